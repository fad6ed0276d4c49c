package parse

import (
	"bytes"

	"github.com/PuerkitoBio/goquery"
)

// DetailRules is the ordered rule table applied to a detail page. Names
// double as the storage column names for the extracted sections.
var DetailRules = []FieldRule{
	{Name: "page_title", Selector: "header.mod-page-title"},
	{Name: "local_nav", Selector: "nav.detail-local-nav"},
	{Name: "main_article", Selector: "section.main_kiji_area"},
	{Name: "job_content", Selector: "section.bosyuarea"},
	{Name: "button_holder", Selector: "section.mod-button-holder", Multi: true},
	{Name: "company_profile", Selector: "section.sugaoarea"},
	{Name: "company_info", Selector: "section.kigyogaiyo"},
	{Name: "application_process", Selector: "section.aboutoubo"},
	{Name: "other_occupations", Selector: "section.mod-other-occupation"},
	{Name: "recommendations", Selector: "section.mod-recommend", Multi: true},
	{Name: "search_index", Selector: "section.mod-search-index", Multi: true},
}

// DetailFieldNames returns the detail section names in rule order.
func DetailFieldNames() []string {
	names := make([]string, len(DetailRules))
	for i, r := range DetailRules {
		names[i] = r.Name
	}
	return names
}

// ParseDetail extracts every configured detail section from a detail page.
// Extraction is scoped to the document's main region; when the page has no
// main element every field comes back empty. The result always contains one
// entry per rule.
func ParseDetail(body []byte) map[string]string {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return ExtractFields(nil, DetailRules)
	}
	return ExtractFields(doc.Find("main").First(), DetailRules)
}
