package handlers

import (
	"html/template"
	"net/http"

	"noaa-archive/internal/archive"
)

const (
	openAPIPath       = "/api/docs/openapi.json"
	swaggerUIVersion  = "5.10.0"
	exampleNEXRADName = "KTLX20230615_123456_V06"
	exampleGOESName   = "OR_ABI-L1b-RadC-M6C02_G18_s20230010000000_e20230010009000_c20230010009500.nc"
)

type docsArchive struct {
	Name    string
	Path    string
	Example string
}

type docsPage struct {
	SpecURL  string
	Version  string
	Archives []docsArchive
}

var docsArchives = func() []docsArchive {
	examples := map[archive.Kind]string{
		archive.NEXRAD: exampleNEXRADName,
		archive.GOES:   exampleGOESName,
	}
	var out []docsArchive
	for _, k := range archive.Kinds() {
		out = append(out, docsArchive{Name: k.DisplayName(), Path: k.String(), Example: examples[k]})
	}
	return out
}()

var swaggerPage = template.Must(template.New("swagger").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
    <meta charset="UTF-8">
    <title>NOAA Archive API Documentation</title>
    <link rel="stylesheet" type="text/css" href="https://unpkg.com/swagger-ui-dist@{{.Version}}/swagger-ui.css">
    <style>
        body { margin: 0; font-family: sans-serif; }
        .archives { padding: 12px 24px; background: #f4f7fa; border-bottom: 1px solid #d8dde3; }
        .archives code { background: #e6ebf0; padding: 1px 4px; }
    </style>
</head>
<body>
    <div class="archives">
        <strong>Archives</strong>
        <ul>
        {{- range .Archives}}
            <li>{{.Name}}: <code>/api/{{.Path}}/resolve?filename={{.Example}}</code></li>
        {{- end}}
        </ul>
    </div>
    <div id="swagger-ui"></div>
    <script src="https://unpkg.com/swagger-ui-dist@{{.Version}}/swagger-ui-bundle.js"></script>
    <script>
        window.onload = function() {
            window.ui = SwaggerUIBundle({
                url: "{{.SpecURL}}",
                dom_id: '#swagger-ui',
                deepLinking: true,
                docExpansion: "list",
                filter: true,
                tryItOutEnabled: true,
                presets: [SwaggerUIBundle.presets.apis],
                layout: "BaseLayout"
            });
        };
    </script>
</body>
</html>`))

// SwaggerUI serves the API explorer with one resolve example per archive
func SwaggerUI(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html")
	swaggerPage.Execute(w, docsPage{
		SpecURL:  openAPIPath,
		Version:  swaggerUIVersion,
		Archives: docsArchives,
	})
}
