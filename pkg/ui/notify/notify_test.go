package notify_test

import (
	"bytes"
	"testing"
	"time"

	"github.com/devlab-sh/devlab/pkg/ui/notify"
	"github.com/devlab-sh/devlab/pkg/ui/timer"
	fcolor "github.com/fatih/color"
	"github.com/stretchr/testify/assert"
)

func TestMain(m *testing.M) {
	fcolor.NoColor = true

	m.Run()
}

func TestErrorf(t *testing.T) {
	var buf bytes.Buffer

	notify.Errorf(&buf, "boom: %s", "detail")

	assert.Equal(t, "✗ boom: detail\n", buf.String())
}

func TestWarningf(t *testing.T) {
	var buf bytes.Buffer

	notify.Warningf(&buf, "watch out")

	assert.Equal(t, "⚠ watch out\n", buf.String())
}

func TestActivityf(t *testing.T) {
	var buf bytes.Buffer

	notify.Activityf(&buf, "creating cluster")

	assert.Equal(t, "► creating cluster\n", buf.String())
}

func TestSuccessf(t *testing.T) {
	var buf bytes.Buffer

	notify.Successf(&buf, "cluster created")

	assert.Equal(t, "✔ cluster created\n", buf.String())
}

func TestInfof(t *testing.T) {
	var buf bytes.Buffer

	notify.Infof(&buf, "using context %q", "kind-devlab")

	assert.Equal(t, "ℹ using context \"kind-devlab\"\n", buf.String())
}

func TestTitlef(t *testing.T) {
	var buf bytes.Buffer

	notify.Titlef(&buf, "🚀", "Create cluster...")

	assert.Equal(t, "🚀 Create cluster...\n", buf.String())
}

func TestTitlef_DefaultEmoji(t *testing.T) {
	var buf bytes.Buffer

	notify.WriteMessage(notify.Message{
		Type:    notify.TitleType,
		Content: "Summary",
		Writer:  &buf,
	})

	assert.Equal(t, "ℹ️ Summary\n", buf.String())
}

func TestSuccessWithTimerf(t *testing.T) {
	var buf bytes.Buffer

	clock := time.Unix(0, 0)
	tmr := timer.NewWithClock(func() time.Time {
		clock = clock.Add(time.Second)

		return clock
	})
	tmr.Start()

	notify.SuccessWithTimerf(&buf, tmr, "cluster created")

	output := buf.String()
	assert.Contains(t, output, "✔ cluster created\n")
	assert.Contains(t, output, "⏲ current:")
	assert.Contains(t, output, "total:")
}

func TestMultilineContentIndented(t *testing.T) {
	var buf bytes.Buffer

	notify.Infof(&buf, "first line\nsecond line")

	output := buf.String()
	assert.Contains(t, output, "ℹ first line\n")
	assert.Contains(t, output, "second line")
}
