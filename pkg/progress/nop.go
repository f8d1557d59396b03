package progress

// Nop discards progress
type Nop struct{}

func (Nop) Start(int)  {}
func (Nop) Increment() {}
func (Nop) Finish()    {}
