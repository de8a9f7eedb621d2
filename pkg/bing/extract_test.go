package bing

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtractCandidateURLs(t *testing.T) {
	body := []byte(`<div class="imgpt"><a class="iusc" m="{&quot;cid&quot;:&quot;x&quot;,&quot;murl&quot;:&quot;https://a.test/1.jpg&quot;,&quot;turl&quot;:&quot;https://t.test/1&quot;}"></a>` +
		`<a class="iusc" m="{&quot;murl&quot;:&quot;https://b.test/2.png?w=1&amp;h=2&quot;}"></a>` +
		`<a class="iusc" m="{&quot;murl&quot;:&quot;https://a.test/1.jpg&quot;}"></a></div>`)

	urls := ExtractCandidateURLs(body)
	assert.Equal(t, []string{
		"https://a.test/1.jpg",
		"https://b.test/2.png?w=1&amp;h=2",
		"https://a.test/1.jpg",
	}, urls)
}

func TestExtractCandidateURLsNoMarkers(t *testing.T) {
	assert.Empty(t, ExtractCandidateURLs([]byte("<html><body>no results</body></html>")))
	assert.Empty(t, ExtractCandidateURLs(nil))
}
