package service

import "sync"

// instanceLocks serializes in-process transitions per instance so that
// concurrent approvals queue up instead of burning optimistic-lock
// conflicts. Locks are striped by instance id; the storage-layer version
// predicate remains the actual correctness guarantee across processes.
type instanceLocks struct {
	stripes [64]sync.Mutex
}

func (l *instanceLocks) lock(instanceID int64) func() {
	m := &l.stripes[uint64(instanceID)%uint64(len(l.stripes))]
	m.Lock()
	return m.Unlock
}
