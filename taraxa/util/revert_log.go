package util

type Revert func()

// RevertLog is an undo journal. Snapshots are plain offsets into it.
type RevertLog struct {
	reverts []Revert
}

func (this *RevertLog) Init(capacity int) *RevertLog {
	this.reverts = make([]Revert, 0, capacity)
	return this
}

func (this *RevertLog) Append(revert Revert) {
	this.reverts = append(this.reverts, revert)
}

func (this *RevertLog) Snapshot() int {
	return len(this.reverts)
}

func (this *RevertLog) RevertToSnapshot(snapshot int) {
	Assert(0 <= snapshot && snapshot <= len(this.reverts), "invalid snapshot")
	for i := len(this.reverts) - 1; i >= snapshot; i-- {
		this.reverts[i]()
		this.reverts[i] = nil
	}
	this.reverts = this.reverts[:snapshot]
}

func (this *RevertLog) Reset() {
	for i := range this.reverts {
		this.reverts[i] = nil
	}
	this.reverts = this.reverts[:0]
}
