package airride

import "github.com/goombaio/namegenerator"

// runLabeler mints a short human-readable label for each service launch
// (an adjective-noun pair such as "purple-falcon"), logged as the "label"
// attribute of the start record, so that repeated crash-loop launches of the
// same service can be told apart at a glance instead of just by a bare pid
// that gets reused.
type runLabeler struct {
	gen namegenerator.Generator
}

// newRunLabeler seeds the generator from a fixed seed derived at process
// start; Math/rand-style entropy is unnecessary here since labels only need
// to be locally distinct across a single supervisor's lifetime, not
// cryptographically unique.
func newRunLabeler(seed int64) *runLabeler {
	return &runLabeler{gen: namegenerator.NewNameGenerator(seed)}
}

func (r *runLabeler) next() string {
	return r.gen.Generate()
}
