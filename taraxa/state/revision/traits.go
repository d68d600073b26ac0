package revision

type (
	Frontier         struct{}
	Homestead        struct{}
	TangerineWhistle struct{}
	SpuriousDragon   struct{}
	Byzantium        struct{}
	Petersburg       struct{}
	Istanbul         struct{}
	Berlin           struct{}
	London           struct{}
	Shanghai         struct{}
	Cancun           struct{}
	Prague           struct{}
	Next             struct{}
)

func (Frontier) ID() ID         { return FRONTIER }
func (Homestead) ID() ID        { return HOMESTEAD }
func (TangerineWhistle) ID() ID { return TANGERINE_WHISTLE }
func (SpuriousDragon) ID() ID   { return SPURIOUS_DRAGON }
func (Byzantium) ID() ID        { return BYZANTIUM }
func (Petersburg) ID() ID       { return PETERSBURG }
func (Istanbul) ID() ID         { return ISTANBUL }
func (Berlin) ID() ID           { return BERLIN }
func (London) ID() ID           { return LONDON }
func (Shanghai) ID() ID         { return SHANGHAI }
func (Cancun) ID() ID           { return CANCUN }
func (Prague) ID() ID           { return PRAGUE }
func (Next) ID() ID             { return NEXT }

// Traits is the closed set of revision tags hot-path primitives are instantiated with.
type Traits interface {
	Frontier | Homestead | TangerineWhistle | SpuriousDragon | Byzantium | Petersburg |
		Istanbul | Berlin | London | Shanghai | Cancun | Prague | Next
	ID() ID
}

func Of[R Traits]() ID {
	var r R
	return r.ID()
}

func AtLeast[R Traits](rev ID) bool {
	return Of[R]() >= rev
}

func Has[R Traits](c Capability) bool {
	return Of[R]().Has(c)
}

func ScheduleOf[R Traits]() *Schedule {
	return &schedules[Of[R]()]
}
