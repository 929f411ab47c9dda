package domain

// PlayerEventType defines the category of a playback notification.
type PlayerEventType string

const (
	PlayerLoad      PlayerEventType = "load"
	PlayerLoadError PlayerEventType = "load_error"
	PlayerPlay      PlayerEventType = "play"
	PlayerPause     PlayerEventType = "pause"
	PlayerStop      PlayerEventType = "stop"
	PlayerFrame     PlayerEventType = "frame"
	PlayerRender    PlayerEventType = "render"
	PlayerLoop      PlayerEventType = "loop"
	PlayerComplete  PlayerEventType = "complete"
)

// PlayerEvent is a queued playback notification.
type PlayerEvent struct {
	Type  PlayerEventType `json:"type"`
	Frame float64         `json:"frame,omitempty"`
	Loop  uint32          `json:"loop,omitempty"`
}

// Dispatch calls the Observer method matching the event type.
func (e PlayerEvent) Dispatch(o Observer) {
	switch e.Type {
	case PlayerLoad:
		o.OnLoad()
	case PlayerLoadError:
		o.OnLoadError()
	case PlayerPlay:
		o.OnPlay()
	case PlayerPause:
		o.OnPause()
	case PlayerStop:
		o.OnStop()
	case PlayerFrame:
		o.OnFrame(e.Frame)
	case PlayerRender:
		o.OnRender(e.Frame)
	case PlayerLoop:
		o.OnLoop(e.Loop)
	case PlayerComplete:
		o.OnComplete()
	}
}

// MachineEventType defines the category of a state machine notification.
type MachineEventType string

const (
	MachineStart         MachineEventType = "start"
	MachineStop          MachineEventType = "stop"
	MachineTransition    MachineEventType = "transition"
	MachineStateEntered  MachineEventType = "state_entered"
	MachineStateExit     MachineEventType = "state_exit"
	MachineCustomEvent   MachineEventType = "custom_event"
	MachineStringChange  MachineEventType = "string_input_change"
	MachineNumericChange MachineEventType = "numeric_input_change"
	MachineBooleanChange MachineEventType = "boolean_input_change"
	MachineInputFired    MachineEventType = "input_fired"
	MachineError         MachineEventType = "error"
)

// MachineEvent is a queued state machine notification. From/To are set for
// transitions, State for enter/exit, Name for custom events and inputs.
type MachineEvent struct {
	Type    MachineEventType `json:"type"`
	From    string           `json:"from,omitempty"`
	To      string           `json:"to,omitempty"`
	State   string           `json:"state,omitempty"`
	Name    string           `json:"name,omitempty"`
	Old     *Value           `json:"old,omitempty"`
	New     *Value           `json:"new,omitempty"`
	Message string           `json:"message,omitempty"`
}

// Dispatch calls the StateMachineObserver method matching the event type.
func (e MachineEvent) Dispatch(o StateMachineObserver) {
	switch e.Type {
	case MachineStart:
		o.OnStart()
	case MachineStop:
		o.OnStop()
	case MachineTransition:
		o.OnTransition(e.From, e.To)
	case MachineStateEntered:
		o.OnStateEntered(e.State)
	case MachineStateExit:
		o.OnStateExit(e.State)
	case MachineCustomEvent:
		o.OnCustomEvent(e.Name)
	case MachineStringChange:
		o.OnStringInputValueChange(e.Name, e.Old.Text, e.New.Text)
	case MachineNumericChange:
		o.OnNumericInputValueChange(e.Name, e.Old.Number, e.New.Number)
	case MachineBooleanChange:
		o.OnBooleanInputValueChange(e.Name, e.Old.Bool, e.New.Bool)
	case MachineInputFired:
		o.OnInputFired(e.Name)
	case MachineError:
		o.OnError(e.Message)
	}
}

// Observer receives playback lifecycle notifications.
type Observer interface {
	OnLoad()
	OnLoadError()
	OnPlay()
	OnPause()
	OnStop()
	OnFrame(frame float64)
	OnRender(frame float64)
	OnLoop(count uint32)
	OnComplete()
}

// StateMachineObserver receives state machine notifications.
type StateMachineObserver interface {
	OnStart()
	OnStop()
	OnTransition(from, to string)
	OnStateEntered(state string)
	OnStateExit(state string)
	OnCustomEvent(name string)
	OnStringInputValueChange(name, oldValue, newValue string)
	OnNumericInputValueChange(name string, oldValue, newValue float64)
	OnBooleanInputValueChange(name string, oldValue, newValue bool)
	OnInputFired(name string)
	OnError(message string)
}

// PlayerHooks adapts plain functions to Observer. Nil fields are skipped.
type PlayerHooks struct {
	Load      func()
	LoadError func()
	Play      func()
	Pause     func()
	Stop      func()
	Frame     func(frame float64)
	Render    func(frame float64)
	Loop      func(count uint32)
	Complete  func()
}

func (h PlayerHooks) OnLoad() {
	if h.Load != nil {
		h.Load()
	}
}

func (h PlayerHooks) OnLoadError() {
	if h.LoadError != nil {
		h.LoadError()
	}
}

func (h PlayerHooks) OnPlay() {
	if h.Play != nil {
		h.Play()
	}
}

func (h PlayerHooks) OnPause() {
	if h.Pause != nil {
		h.Pause()
	}
}

func (h PlayerHooks) OnStop() {
	if h.Stop != nil {
		h.Stop()
	}
}

func (h PlayerHooks) OnFrame(frame float64) {
	if h.Frame != nil {
		h.Frame(frame)
	}
}

func (h PlayerHooks) OnRender(frame float64) {
	if h.Render != nil {
		h.Render(frame)
	}
}

func (h PlayerHooks) OnLoop(count uint32) {
	if h.Loop != nil {
		h.Loop(count)
	}
}

func (h PlayerHooks) OnComplete() {
	if h.Complete != nil {
		h.Complete()
	}
}

// MachineHooks adapts plain functions to StateMachineObserver. Nil fields are skipped.
type MachineHooks struct {
	Start         func()
	Stop          func()
	Transition    func(from, to string)
	StateEntered  func(state string)
	StateExit     func(state string)
	CustomEvent   func(name string)
	StringChange  func(name, oldValue, newValue string)
	NumericChange func(name string, oldValue, newValue float64)
	BooleanChange func(name string, oldValue, newValue bool)
	InputFired    func(name string)
	Error         func(message string)
}

func (h MachineHooks) OnStart() {
	if h.Start != nil {
		h.Start()
	}
}

func (h MachineHooks) OnStop() {
	if h.Stop != nil {
		h.Stop()
	}
}

func (h MachineHooks) OnTransition(from, to string) {
	if h.Transition != nil {
		h.Transition(from, to)
	}
}

func (h MachineHooks) OnStateEntered(state string) {
	if h.StateEntered != nil {
		h.StateEntered(state)
	}
}

func (h MachineHooks) OnStateExit(state string) {
	if h.StateExit != nil {
		h.StateExit(state)
	}
}

func (h MachineHooks) OnCustomEvent(name string) {
	if h.CustomEvent != nil {
		h.CustomEvent(name)
	}
}

func (h MachineHooks) OnStringInputValueChange(name, oldValue, newValue string) {
	if h.StringChange != nil {
		h.StringChange(name, oldValue, newValue)
	}
}

func (h MachineHooks) OnNumericInputValueChange(name string, oldValue, newValue float64) {
	if h.NumericChange != nil {
		h.NumericChange(name, oldValue, newValue)
	}
}

func (h MachineHooks) OnBooleanInputValueChange(name string, oldValue, newValue bool) {
	if h.BooleanChange != nil {
		h.BooleanChange(name, oldValue, newValue)
	}
}

func (h MachineHooks) OnInputFired(name string) {
	if h.InputFired != nil {
		h.InputFired(name)
	}
}

func (h MachineHooks) OnError(message string) {
	if h.Error != nil {
		h.Error(message)
	}
}

// PlayerFunc adapts a function receiving whole events to Observer.
type PlayerFunc func(PlayerEvent)

func (f PlayerFunc) OnLoad()                { f(PlayerEvent{Type: PlayerLoad}) }
func (f PlayerFunc) OnLoadError()           { f(PlayerEvent{Type: PlayerLoadError}) }
func (f PlayerFunc) OnPlay()                { f(PlayerEvent{Type: PlayerPlay}) }
func (f PlayerFunc) OnPause()               { f(PlayerEvent{Type: PlayerPause}) }
func (f PlayerFunc) OnStop()                { f(PlayerEvent{Type: PlayerStop}) }
func (f PlayerFunc) OnFrame(frame float64)  { f(PlayerEvent{Type: PlayerFrame, Frame: frame}) }
func (f PlayerFunc) OnRender(frame float64) { f(PlayerEvent{Type: PlayerRender, Frame: frame}) }
func (f PlayerFunc) OnLoop(count uint32)    { f(PlayerEvent{Type: PlayerLoop, Loop: count}) }
func (f PlayerFunc) OnComplete()            { f(PlayerEvent{Type: PlayerComplete}) }

// MachineFunc adapts a function receiving whole events to
// StateMachineObserver.
type MachineFunc func(MachineEvent)

func (f MachineFunc) OnStart()                     { f(MachineEvent{Type: MachineStart}) }
func (f MachineFunc) OnStop()                      { f(MachineEvent{Type: MachineStop}) }
func (f MachineFunc) OnTransition(from, to string) { f(MachineEvent{Type: MachineTransition, From: from, To: to}) }
func (f MachineFunc) OnStateEntered(state string)  { f(MachineEvent{Type: MachineStateEntered, State: state}) }
func (f MachineFunc) OnStateExit(state string)     { f(MachineEvent{Type: MachineStateExit, State: state}) }
func (f MachineFunc) OnCustomEvent(name string)    { f(MachineEvent{Type: MachineCustomEvent, Name: name}) }
func (f MachineFunc) OnInputFired(name string)     { f(MachineEvent{Type: MachineInputFired, Name: name}) }
func (f MachineFunc) OnError(message string)       { f(MachineEvent{Type: MachineError, Message: message}) }

func (f MachineFunc) OnStringInputValueChange(name, oldValue, newValue string) {
	o, n := StringValue(oldValue), StringValue(newValue)
	f(MachineEvent{Type: MachineStringChange, Name: name, Old: &o, New: &n})
}

func (f MachineFunc) OnNumericInputValueChange(name string, oldValue, newValue float64) {
	o, n := NumberValue(oldValue), NumberValue(newValue)
	f(MachineEvent{Type: MachineNumericChange, Name: name, Old: &o, New: &n})
}

func (f MachineFunc) OnBooleanInputValueChange(name string, oldValue, newValue bool) {
	o, n := BoolValue(oldValue), BoolValue(newValue)
	f(MachineEvent{Type: MachineBooleanChange, Name: name, Old: &o, New: &n})
}
