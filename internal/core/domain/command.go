package domain

// Command is a single subprocess invocation.
// Env holds the complete KEY=VALUE environment overlay applied on top of the process environment.
type Command struct {
	Name string
	Args []string
	Dir  string
	Env  []string
}

// NewCommand creates a command running name with args in dir.
func NewCommand(dir string, env []string, name string, args ...string) *Command {
	return &Command{Name: name, Args: args, Dir: dir, Env: env}
}

// Argv returns the full argument vector.
func (c *Command) Argv() []string {
	return append([]string{c.Name}, c.Args...)
}
