package jobs

import "github.com/sirupsen/logrus"

// HeartbeatTask writes a periodic liveness line. Useful for spotting a
// stalled scheduler in the logs.
type HeartbeatTask struct {
}

func NewHeartbeatTask() *HeartbeatTask {
	return &HeartbeatTask{}
}

func (h *HeartbeatTask) ID() string {
	return "heartbeat"
}

func (h *HeartbeatTask) Run() {
	logrus.Debug("job scheduler heartbeat")
}
