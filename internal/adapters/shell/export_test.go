package shell

// ResolveEnvironment is exported for white-box testing.
var ResolveEnvironment = resolveEnvironment
