package community

import "html/template"

var pageTemplate = template.Must(template.New("community").Parse(`<!DOCTYPE html>
<html>
<head><title>Community</title></head>
<body>
{{range .Flashes}}<div class="alert alert-{{.Category}}">{{.Message}}</div>
{{end}}
{{if .Preview}}<p class="preview">Community preview</p>{{end}}
{{with .Email}}<p class="account">Logged in as {{.}}{{with $.Role}} ({{.}}){{end}}{{if $.IsDonor}} <span class="donor">donor</span>{{end}}</p>{{end}}
{{if .CanLogout}}<a href="community_logout">Logout</a>{{end}}
<section class="stats">
  <span class="total-bots">{{.BotsStats.TotalBots}}</span> bots,
  <span class="running-bots">{{.BotsStats.RunningBots}}</span> running,
  <span class="total-trades">{{.BotsStats.TotalTrades}}</span> trades
  {{with .BotsStats.UpdatedAgo}}<small>updated {{.}}</small>{{end}}
</section>
<section class="bots">
{{range .UserBots}}<div class="bot{{if $.SelectedBot}}{{if eq .ID $.SelectedBot.ID}} selected{{end}}{{end}}">{{.Name}}{{if $.CanSelectBot}} <a href="community_select_bot?bot_id={{.ID}}">select</a>{{end}}</div>
{{end}}
</section>
<section class="strategies">
{{range .Strategies}}<div class="strategy" data-id="{{.ID}}">{{.Name}} <small>{{.Category}}</small></div>
{{end}}
</section>
</body>
</html>
`))
