// Package siggs synthesizes, at runtime, a record type mirroring the
// parameter list of a method: one field per parameter, typed like the
// parameter and carrying the annotations written on it.
//
// A Service owns an annotation registry and a permanent type cache keyed by
// method identity (declaring type + "." + method name). Repeated and
// concurrent requests for one method return the same *synth.Type.
//
//	svc := siggs.New(siggs.DefaultOptions())
//	typ, err := svc.GetOrCreate(method)
//	inst := typ.New()
//	_ = inst.Set("message", "hello")
package siggs
