// Command kinema plays Lottie animations driven by interactive state
// machines, from the terminal or as an HTTP, MCP or MQTT service.
package main

func main() {
	Execute()
}
