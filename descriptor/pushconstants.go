package descriptor

// Push constants have no portable WebGPU equivalent (wgpu-native carries an
// experimental extension but the cogentcore binding the rest of this
// renderer depends on does not expose it); each push-constant payload
// below is instead written to a small uniform buffer bound at
// BindingPushConstants (or binding 3 of the depth-pyramid/composite
// layouts). queue.WriteBuffer executes when called, ordered before every
// pass of the subsequently submitted command buffer, so a single shared
// buffer would collapse every payload of the frame to the last write; the
// orchestrator instead draws one small buffer per payload per frame from a
// reused pool, each written exactly once. Every struct below must fit one
// pool entry, sized to the largest of them (ONPCPushConstants, 64 bytes).

// CullPushConstants is the cull passes' payload. A render-object
// device-address has no WebGPU equivalent (buffers are bound, not
// addressed); the render-object buffer is instead bound directly at its
// stable descriptor binding and only DrawCount is carried here.
type CullPushConstants struct {
	DrawCount uint32
	_pad      [3]uint32
}

// ClusterCullPushConstants extends the cull payload with the cluster
// dispatch shape. As with CullPushConstants, the buffers themselves are
// bound at stable descriptor slots; only the scalar dispatch shape is
// carried here.
type ClusterCullPushConstants struct {
	DrawCount    uint32
	ClusterCount uint32
	_pad         [2]uint32
}

// The graphics passes push nothing: the active render-object buffer is
// carried by its stable descriptor binding (the orchestrator's bind-group
// rebuild) rather than by address.

// DepthPyramidPushConstants is written once per mip level of the
// depth-pyramid generation pass.
type DepthPyramidPushConstants struct {
	MipLevelWidth  uint32
	MipLevelHeight uint32
}

// CompositePushConstants is the swapchain composite pass's payload.
type CompositePushConstants struct {
	DrawExtentWidth  uint32
	DrawExtentHeight uint32
}

// ONPCPushConstants carries the oblique near-plane clipping projection the
// reflective pass's vertex stage uses in place of the camera's ordinary
// projectionView.
type ONPCPushConstants struct {
	ObliqueProjection [16]float32
}
