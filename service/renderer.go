package service

import (
	"bytes"
	"fmt"
	"html/template"
	"strings"

	"github.com/askar0007amirkhanov/ai-precheck/model"
)

// Renderer produces the downloadable HTML report document.
type Renderer struct {
	tmpl *template.Template
}

func NewRenderer() *Renderer {
	return &Renderer{
		tmpl: template.Must(template.New("report").Funcs(template.FuncMap{
			"statusClass":  statusClass,
			"verdictLabel": verdictLabel,
			"pct":          func(score, weight float64) string { return fmt.Sprintf("%.0f / %.0f", score, weight) },
		}).Parse(reportTemplate)),
	}
}

// Render produces the HTML document for a stored report record.
func (r *Renderer) Render(rec *model.ReportRecord) ([]byte, error) {
	var buf bytes.Buffer
	if err := r.tmpl.Execute(&buf, rec); err != nil {
		return nil, fmt.Errorf("render report: %w", err)
	}
	return buf.Bytes(), nil
}

func statusClass(s model.ComplianceStatus) string {
	return strings.ToLower(strings.ReplaceAll(string(s), "_", "-"))
}

func verdictLabel(s model.VerdictStatus) string {
	switch s {
	case model.VerdictPass:
		return "Pass"
	case model.VerdictFail:
		return "Fail"
	case model.VerdictWarning:
		return "Warning"
	case model.VerdictManualReview:
		return "Manual review"
	default:
		return string(s)
	}
}

const reportTemplate = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>Compliance Report - {{.CompanyName}}</title>
<style>
body { font-family: Arial, Helvetica, sans-serif; color: #1a1a2e; margin: 40px; }
h1 { font-size: 22px; }
h2 { font-size: 16px; margin-top: 28px; border-bottom: 1px solid #ddd; padding-bottom: 4px; }
table { width: 100%; border-collapse: collapse; margin-top: 8px; }
th, td { text-align: left; padding: 6px 8px; border-bottom: 1px solid #eee; font-size: 13px; vertical-align: top; }
th { background: #f6f6f9; }
.badge { display: inline-block; padding: 4px 12px; border-radius: 4px; color: #fff; font-weight: bold; }
.badge.compliant { background: #2e8b57; }
.badge.needs-review { background: #d98e04; }
.badge.non-compliant { background: #c0392b; }
.verdict { font-weight: bold; }
.verdict.pass { color: #2e8b57; }
.verdict.fail { color: #c0392b; }
.verdict.warning { color: #d98e04; }
.verdict.manual_review { color: #5b6abf; }
.meta { color: #666; font-size: 13px; }
.summary { margin: 16px 0; padding: 12px; background: #f6f6f9; border-radius: 4px; }
</style>
</head>
<body>
<h1>Website Compliance Report</h1>
<p class="meta">
Company: <strong>{{.CompanyName}}</strong><br>
{{if .SiteURL}}Site: {{.SiteURL}}<br>{{end}}
Report ID: {{.Report.ReportID}}<br>
Generated: {{.Report.GeneratedAt.Format "2006-01-02 15:04 UTC"}}
</p>
<p>Overall score: <strong>{{.Report.OverallScore}} / 100</strong>
<span class="badge {{statusClass .Report.Status}}">{{.Report.Status}}</span></p>
<div class="summary">{{.Report.Summary}}</div>
{{range .Report.Sections}}
<h2>{{.Name}} <span class="meta">({{pct .Score .Weight}})</span></h2>
<table>
<tr><th>Check</th><th>Status</th><th>Found</th><th>Recommendation</th></tr>
{{range .Items}}
<tr>
<td>{{.Item}}</td>
<td class="verdict {{.Status}}">{{verdictLabel .Status}}</td>
<td>{{.FoundValue}}</td>
<td>{{.Recommendation}}</td>
</tr>
{{end}}
</table>
{{end}}
</body>
</html>
`
