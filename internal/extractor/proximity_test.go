package extractor

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sjsage522/filmwaiver/internal/discount"
)

const proseHTML = `<html><head>
<style>.promo { color: red }</style>
<script>var fallbackCode = "ZZZ999";</script>
</head><body>
<p>Submit to the Sundance Film Festival with code SUNDANCE25 and get 25% off entry.</p>
<p>Toronto Shorts Festival: use TSF2024 for free submission.</p>
</body></html>`

func newTestProximity() *Proximity {
	p := NewProximity()
	p.now = func() time.Time { return fixedTime }
	return p
}

func TestProximityPairsNearestName(t *testing.T) {
	records := newTestProximity().Extract(proseHTML)
	require.Len(t, records, 2)

	assert.Equal(t, discount.Record{
		FestivalName: "Sundance Film Festival",
		Code:         "SUNDANCE25",
		Offer:        "25% off",
		Source:       discount.SourceScraped,
		ScrapedAt:    fixedTime,
	}, records[0])

	assert.Equal(t, "Toronto Shorts Festival", records[1].FestivalName)
	assert.Equal(t, "TSF2024", records[1].Code)
	assert.Equal(t, "free submission", records[1].Offer)
}

func TestProximityIgnoresDistantCodes(t *testing.T) {
	filler := strings.Repeat("lorem ipsum ", 30)
	html := "<p>Raindance Film Festival</p><p>" + filler + "</p><p>RAIN2025</p>"

	records := newTestProximity().Extract(html)
	assert.Empty(t, records)

	p := newTestProximity()
	p.MaxDistance = 1000
	p.Window = 1000
	records = p.Extract(html)
	require.Len(t, records, 1)
	assert.Equal(t, "RAIN2025", records[0].Code)
	assert.Equal(t, discount.DefaultOffer, records[0].Offer)
}

func TestProximityEmptyInput(t *testing.T) {
	records := newTestProximity().Extract("")
	assert.Empty(t, records)
}

func TestVisibleText(t *testing.T) {
	text := visibleText(`<div>Tribeca&nbsp;&amp; Friends<!-- TRIB99 --><script>x="ABC123"</script>
		<b>Festival</b></div>`)
	assert.Equal(t, "Tribeca & Friends Festival", text)
}

func TestDistance(t *testing.T) {
	assert.Equal(t, 5, distance(0, 10, 15, 20))
	assert.Equal(t, 5, distance(15, 20, 0, 10))
	assert.Equal(t, -1, distance(0, 10, 5, 12))
}
