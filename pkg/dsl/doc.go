/*
Package dsl builds kinema state machine definitions in Go instead of YAML.

The builder produces the same domain.Definition the YAML parser does and
validates it with the runtime compiler, so a definition that builds also
loads.

	b := dsl.New("button")
	b.Numeric("clicks", 0)

	b.Add("idle").
		Initial().
		Go("pressed", dsl.AtLeast("clicks", 3))

	b.Add("pressed").
		Segment("hover").
		Autoplay().
		OnEntry(dsl.CustomEvent("pressed"))

	b.On(domain.InteractClick, "button", dsl.Increment("clicks"))

	def, err := b.Build()
	if err != nil {
		log.Fatal(err)
	}
	err = player.StateMachineLoadDefinition(def)
*/
package dsl
