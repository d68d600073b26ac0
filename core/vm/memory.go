package vm

// Memory implements a simple memory model for the ethereum virtual machine.
type Memory struct {
	store       []byte
	lastGasCost uint64
}

// Set sets offset + size to value
func (m *Memory) Set(offset, size uint64, value []byte) {
	// It's possible the offset is greater than 0 and size equals 0. This is because
	// the calcMemSize (common.go) could potentially return 0 when size is zero (NO-OP)
	if size > 0 {
		// length of store may never be less than offset + size.
		// The store should be resized PRIOR to setting the memory
		if offset+size > m.Len() {
			panic("invalid memory: store empty")
		}
		copy(m.store[offset:offset+size], value)
	}
}

// Resize resizes the memory to size
func (m *Memory) Resize(size uint64) {
	if size <= m.Len() {
		return
	}
	grown := make([]byte, size)
	copy(grown, m.store)
	m.store = grown
}

// GetCopy returns offset + size as a new slice
func (m *Memory) GetCopy(offset, size uint64) (cpy []byte) {
	if size != 0 && m.Len() > offset {
		cpy = make([]byte, size)
		copy(cpy, m.store[offset:])
	}
	return
}

// Len returns the length of the backing slice
func (m *Memory) Len() uint64 {
	return uint64(len(m.store))
}

func (m *Memory) Data() []byte {
	return m.store
}
