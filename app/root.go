package app

import (
	"net/http"
	"strings"
)

func (a *App) handleRoot(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html")
	w.Header().Set("Cache-Control", "max-age=3600")

	// Generate the HTML list items for each view
	var listItemsBuilder strings.Builder
	for _, name := range a.views() {
		listItemsBuilder.WriteString("<li><a href=\"/v?name=" + name + "\">" + name + "</a></li>\n")
	}
	listItemsHTML := listItemsBuilder.String()

	var domainItemsBuilder strings.Builder
	for _, name := range a.domains.Names() {
		domainItemsBuilder.WriteString("<li><code>" + name + "</code></li>\n")
	}
	domainItemsHTML := domainItemsBuilder.String()

	responseHTML := `<html>
	<head><title>SKALA</title></head>
	<body>
		<h1>SKALA</h1>
		<code>commit ` + a.commit + `</code>
		<p>Send measurements to <code>/m</code> with headers <code>LBL</code>, <code>DOM</code> and <code>VAL</code>. Optional header: <code>TS</code>.</p>
		<p>Scale ad-hoc values with <code>/scale?d=&lt;domain&gt;&amp;s=&lt;strategy&gt;&amp;v=&lt;comma-separated values&gt;</code>. Strategies: <code>best</code>, <code>largest</code>, <code>smallest</code>, <code>none</code>. Pass <code>u=&lt;unit&gt;</code> to skip selection.</p>
		<p>Domains:</p>
		<ul>` + domainItemsHTML + `</ul>
		<p>Get views from <code>/v</code> with query parameter <code>name</code>:</p>
		<ul>` + listItemsHTML + `</ul>
		<p>See <a href="https://github.com/swissinfo-ch/skala">github.com/swissinfo-ch/skala</a> for more information.</p>
	</body>
</html>`

	w.Write([]byte(responseHTML))
}
