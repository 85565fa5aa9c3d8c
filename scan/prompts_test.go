package scan_test

import (
	"strings"
	"testing"

	"github.com/fwojciec/sitebrief"
	"github.com/fwojciec/sitebrief/scan"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultStrategies_Order(t *testing.T) {
	t.Parallel()

	strategies := scan.DefaultStrategies()
	require.Len(t, strategies, 3)
	assert.Equal(t, "detailed", strategies[0].Name)
	assert.Equal(t, "simplified", strategies[1].Name)
	assert.Equal(t, "guided", strategies[2].Name)
}

func TestPromptStrategies_IncludePageContext(t *testing.T) {
	t.Parallel()

	pc := &scan.PromptContext{
		URL:      "https://acme-robotics.example",
		Content:  acmeContent(),
		Markdown: "## Fleet\nAutonomous picking robots.",
	}

	for _, strategy := range scan.DefaultStrategies() {
		t.Run(strategy.Name, func(t *testing.T) {
			t.Parallel()

			prompt := strategy.Build(pc)
			assert.Contains(t, prompt, "https://acme-robotics.example")
			assert.Contains(t, prompt, "Acme Robotics")
			assert.Contains(t, prompt, "Warehouse automation that scales")
			assert.Contains(t, prompt, "Autonomous picking robots.")

			// Every strategy must ask for the full record shape.
			for _, field := range []string{
				sitebrief.FieldEntityName,
				sitebrief.FieldPositioning,
				sitebrief.FieldKeyMessages,
				sitebrief.FieldAudience,
				sitebrief.FieldTraits,
				sitebrief.FieldOverall,
			} {
				assert.Contains(t, prompt, field)
			}

			assert.NotEmpty(t, strategy.SystemFraming)
		})
	}
}

func TestPromptStrategies_DetailedPromptIsReproducible(t *testing.T) {
	t.Parallel()

	content := acmeContent()
	content.MetaTags["zeta"] = "last"
	content.MetaTags["alpha"] = "first"
	pc := &scan.PromptContext{
		URL:     "https://acme-robotics.example",
		Content: content,
	}

	detailed := scan.DefaultStrategies()[0]
	first := detailed.Build(pc)
	assert.Contains(t, first, "Meta alpha: first")
	assert.Contains(t, first, "Meta zeta: last")
	assert.Less(t, strings.Index(first, "Meta alpha"), strings.Index(first, "Meta zeta"))

	for i := 0; i < 20; i++ {
		assert.Equal(t, first, detailed.Build(pc))
	}
}

func TestPromptStrategies_TruncateLongMarkdown(t *testing.T) {
	t.Parallel()

	long := make([]byte, 50000)
	for i := range long {
		long[i] = 'x'
	}
	pc := &scan.PromptContext{
		URL:      "https://acme-robotics.example",
		Content:  acmeContent(),
		Markdown: string(long),
	}

	prompt := scan.DefaultStrategies()[0].Build(pc)
	assert.Less(t, len(prompt), 30000)
}
