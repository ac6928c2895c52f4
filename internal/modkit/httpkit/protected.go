package httpkit

// Protected groups routes behind the shared internal key so mutating ops
// endpoints never mount unguarded. The health and docs surfaces stay
// outside the group.
func Protected(r Router, key string, fn func(Router)) {
	r.Group(func(gr Router) {
		gr.Use(InternalKey(key))
		fn(gr)
	})
}
