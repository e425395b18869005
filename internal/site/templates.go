package site

// indexTemplate is the html/template for the page index served for
// directories without an index.html.
const indexTemplate = `<!DOCTYPE html>
<html lang="en">
<head>
  <meta charset="UTF-8">
  <meta name="viewport" content="width=device-width, initial-scale=1.0">
  <title>{{.Dir}} · fragview</title>
  <style>` + indexCSS + `</style>
</head>
<body>
  <header>
    <h1>{{.Dir}}</h1>
    <p class="meta">{{.Count}} page{{if ne .Count 1}}s{{end}} under {{.Root}}</p>
  </header>
  <main class="tree">
    {{.TreeHTML}}
  </main>
</body>
</html>
`

const indexCSS = `
body { font-family: -apple-system, BlinkMacSystemFont, "Segoe UI", sans-serif; margin: 2rem auto; max-width: 48rem; color: #24292f; }
header h1 { font-size: 1.4rem; margin-bottom: 0.2rem; }
.meta { color: #57606a; margin-top: 0; }
.tree ul { list-style: none; padding-left: 1.2rem; }
.tree > ul { padding-left: 0; }
.tree li { margin: 0.25rem 0; }
.dir-toggle { font-weight: 600; }
.dir > ul { display: none; }
.dir.expanded > ul, .tree > ul > .dir > ul { display: block; }
a { color: #0969da; text-decoration: none; }
a:hover { text-decoration: underline; }
a.active { font-weight: 600; }
a.raw { color: #57606a; font-size: 0.8rem; }
`
