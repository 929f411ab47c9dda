package observability

import (
	"log/slog"

	"github.com/aretw0/kinema/pkg/domain"
)

// LogObserver logs playback notifications. Per-frame notifications are
// logged at Debug, lifecycle changes at Info.
type LogObserver struct {
	logger *slog.Logger
}

// NewLogObserver returns a playback observer writing to logger.
func NewLogObserver(logger *slog.Logger) *LogObserver {
	return &LogObserver{logger: logger}
}

func (o *LogObserver) OnLoad()      { o.logger.Info("Animation loaded") }
func (o *LogObserver) OnLoadError() { o.logger.Warn("Animation failed to load") }
func (o *LogObserver) OnPlay()      { o.logger.Info("Playback started") }
func (o *LogObserver) OnPause()     { o.logger.Info("Playback paused") }
func (o *LogObserver) OnStop()      { o.logger.Info("Playback stopped") }
func (o *LogObserver) OnComplete()  { o.logger.Info("Playback complete") }

func (o *LogObserver) OnFrame(frame float64) {
	o.logger.Debug("Frame", "frame", frame)
}

func (o *LogObserver) OnRender(frame float64) {
	o.logger.Debug("Render", "frame", frame)
}

func (o *LogObserver) OnLoop(count uint32) {
	o.logger.Debug("Loop", "count", count)
}

// MachineLogObserver logs state machine notifications.
type MachineLogObserver struct {
	logger *slog.Logger
}

// NewMachineLogObserver returns a state machine observer writing to logger.
func NewMachineLogObserver(logger *slog.Logger) *MachineLogObserver {
	return &MachineLogObserver{logger: logger}
}

func (o *MachineLogObserver) OnStart() { o.logger.Info("State machine started") }
func (o *MachineLogObserver) OnStop()  { o.logger.Info("State machine stopped") }

func (o *MachineLogObserver) OnTransition(from, to string) {
	o.logger.Debug("Transition", "from", from, "to", to)
}

func (o *MachineLogObserver) OnStateEntered(state string) {
	o.logger.Debug("State entered", "state", state)
}

func (o *MachineLogObserver) OnStateExit(state string) {
	o.logger.Debug("State exit", "state", state)
}

func (o *MachineLogObserver) OnCustomEvent(name string) {
	o.logger.Info("Custom event", "name", name)
}

func (o *MachineLogObserver) OnStringInputValueChange(name, oldValue, newValue string) {
	o.logger.Debug("Input changed", "input", name, "old", oldValue, "new", newValue)
}

func (o *MachineLogObserver) OnNumericInputValueChange(name string, oldValue, newValue float64) {
	o.logger.Debug("Input changed", "input", name, "old", oldValue, "new", newValue)
}

func (o *MachineLogObserver) OnBooleanInputValueChange(name string, oldValue, newValue bool) {
	o.logger.Debug("Input changed", "input", name, "old", oldValue, "new", newValue)
}

func (o *MachineLogObserver) OnInputFired(name string) {
	o.logger.Debug("Input fired", "input", name)
}

func (o *MachineLogObserver) OnError(message string) {
	o.logger.Warn("State machine error", "message", message)
}

var (
	_ domain.Observer             = (*LogObserver)(nil)
	_ domain.StateMachineObserver = (*MachineLogObserver)(nil)
)
