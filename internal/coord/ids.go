package coord

import "github.com/google/uuid"

// ID prefixes identify entity kinds at a glance in logs and results.
const (
	taskIDPrefix      = "task"
	workflowIDPrefix  = "wf"
	teamIDPrefix      = "team"
	syncIDPrefix      = "sync"
	broadcastIDPrefix = "msg"
)

// newID mints a prefixed identifier like "task_3f2a9c1b".
func newID(prefix string) string {
	return prefix + "_" + uuid.New().String()[:8]
}
