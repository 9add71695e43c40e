package device

import "github.com/cogentcore/webgpu/wgpu"

// Queues models Blitzen's four logical queue roles: graphics, present,
// dedicated transfer, and dedicated compute (compute required only when
// the cluster path is enabled). wgpu-native exposes one physical
// queue per device; each role below is the same *wgpu.Queue handle, and the
// distinction is kept at the type level so the draw orchestrator and frame
// tools read and enforce the same submission-ordering contract independent
// queues would demand, rather than collapsing the roles away.
type Queues struct {
	Graphics *wgpu.Queue
	Present  *wgpu.Queue
	Transfer *wgpu.Queue
	Compute  *wgpu.Queue
}

func newQueues(q *wgpu.Queue) Queues {
	return Queues{
		Graphics: q,
		Present:  q,
		Transfer: q,
		Compute:  q,
	}
}
