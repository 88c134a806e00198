package block

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBlockLabel(t *testing.T) {
	tests := []struct {
		name   string
		icon   string
		output string
		want   string
	}{
		{"no icon", "", "12:00\n", "12:00"},
		{"icon and output", "BAT", " 87\n", "BAT 87"},
		{"icon without output", "BAT", "\n", "BAT"},
		{"nothing", "", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := Block{Icon: tt.icon}
			assert.Equal(t, tt.want, b.Label(tt.output))
		})
	}
}

func TestSetIsImmutable(t *testing.T) {
	blocks := []Block{{Icon: "a"}, {Icon: "b"}}
	set := NewSet(blocks...)
	blocks[0].Icon = "changed"

	all := set.All()
	all[1].Icon = "changed"

	require.Equal(t, 2, set.Len())
	assert.Equal(t, "a", set.At(0).Icon)
	assert.Equal(t, "b", set.At(1).Icon)
}

func TestSetLabels(t *testing.T) {
	set := NewSet(Block{}, Block{Icon: "X"})

	assert.Equal(t, []string{"one", "X"}, set.Labels([]string{"one\n"}))
}

func TestCacheSnapshotIsCopy(t *testing.T) {
	c := NewCache(2)
	c.Set(1, "hello")

	snapshot := c.Snapshot()
	snapshot[1] = "changed"

	assert.Equal(t, []string{"", "hello"}, c.Snapshot())
	assert.Equal(t, "hello", c.Get(1))
}

func TestExecRunner(t *testing.T) {
	var r ExecRunner

	out, err := r.Run(Command{Name: "sh", Args: []string{"-c", "echo hello"}})
	require.NoError(t, err)
	assert.Equal(t, "hello\n", out)

	_, err = r.Run(Command{Name: "sh", Args: []string{"-c", "echo broken >&2; exit 3"}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "broken")

	_, err = r.Run(Command{Name: "/nonexistent/riverbar-command"})
	assert.Error(t, err)

	_, err = r.Run(Command{})
	assert.Error(t, err)
}

func TestDefaultsAreValid(t *testing.T) {
	set := Defaults()
	require.NotZero(t, set.Len())

	seen := map[uint]bool{}
	for _, b := range set.All() {
		assert.NotEmpty(t, b.Command.Name)
		if b.Notifiable() {
			assert.False(t, seen[b.Signal], "duplicate signal %d", b.Signal)
			seen[b.Signal] = true
		}
	}
}
