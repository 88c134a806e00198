// Package block defines the commands whose output is shown on the bar.
package block

import "strings"

// Command is an executable and its arguments.
type Command struct {
	Name string
	Args []string
}

func (c Command) String() string {
	if len(c.Args) == 0 {
		return c.Name
	}
	return c.Name + " " + strings.Join(c.Args, " ")
}

// Block is a command that is re-run on an interval, on a notification, or both.
type Block struct {
	Icon    string
	Command Command
	// Interval is in seconds, 0 means the block is not periodic.
	Interval uint
	// Signal is the notification id, 0 means none.
	Signal uint
}

func (b Block) Periodic() bool {
	return b.Interval > 0
}

func (b Block) Notifiable() bool {
	return b.Signal > 0
}

// Label is the text drawn for the block given its last output.
func (b Block) Label(output string) string {
	output = strings.TrimSpace(output)
	switch {
	case b.Icon == "":
		return output
	case output == "":
		return b.Icon
	default:
		return b.Icon + " " + output
	}
}

// Set is an ordered list of blocks. It is immutable after construction.
type Set struct {
	blocks []Block
}

func NewSet(blocks ...Block) Set {
	s := Set{blocks: make([]Block, len(blocks))}
	copy(s.blocks, blocks)
	return s
}

func (s Set) Len() int {
	return len(s.blocks)
}

func (s Set) At(i int) Block {
	return s.blocks[i]
}

// All returns a copy of the blocks.
func (s Set) All() []Block {
	blocks := make([]Block, len(s.blocks))
	copy(blocks, s.blocks)
	return blocks
}

// Labels pairs every block with its output.
func (s Set) Labels(outputs []string) []string {
	labels := make([]string, 0, len(s.blocks))
	for i, b := range s.blocks {
		var output string
		if i < len(outputs) {
			output = outputs[i]
		}
		labels = append(labels, b.Label(output))
	}
	return labels
}
