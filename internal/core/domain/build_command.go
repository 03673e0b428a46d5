package domain

// BuildCommand describes one invocation of the external site build.
type BuildCommand struct {
	// Args is the program followed by its arguments.
	Args []string
	// Dir is the working directory. Empty means the current directory.
	Dir string
	// Env holds extra "KEY=VALUE" entries appended to the inherited environment.
	Env []string
}

// NewJigsawCommand returns the command line for "jigsaw build -q <env>".
func NewJigsawCommand(bin, env, dir string) *BuildCommand {
	return &BuildCommand{
		Args: []string{bin, "build", "-q", env},
		Dir:  dir,
	}
}

// Name returns the program name, or an empty string for an empty command.
func (c *BuildCommand) Name() string {
	if c == nil || len(c.Args) == 0 {
		return ""
	}
	return c.Args[0]
}
