package mqtt

import (
	"fmt"
	"log/slog"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"
)

// Connect dials broker with kinema's client settings. onConnect runs after
// every (re)connection; pass Bridge.Listen wrapped to restore subscriptions.
func Connect(broker, clientID string, onConnect func(paho.Client)) (paho.Client, error) {
	options := paho.NewClientOptions().
		AddBroker(broker).
		SetClientID(clientID).
		SetKeepAlive(30 * time.Second).
		SetPingTimeout(5 * time.Second).
		SetAutoReconnect(true).
		SetConnectionLostHandler(func(_ paho.Client, err error) {
			slog.Warn("MQTT connection lost", "broker", broker, "err", err)
		})
	if onConnect != nil {
		options.SetOnConnectHandler(onConnect)
	}

	client := paho.NewClient(options)
	if token := client.Connect(); token.Wait() && token.Error() != nil {
		return nil, fmt.Errorf("connect to %s: %w", broker, token.Error())
	}
	return client, nil
}
