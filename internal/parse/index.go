package parse

import (
	"bytes"
	"net/url"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Selectors for the listing blocks on a ranking page. The page reuses its
// generic section markup for ads and navigation cards, so blocks are
// filtered by the company-name signal below.
const (
	listingBlockSelector = "#main-area section.job-list.left-column article"
	companySelector      = "h3.company span"
	titleLinkSelector    = "h4.title a"
	rankSelector         = ".rank-ribbon"
	employmentSelector   = ".icon.ribbon.black"
	salarySelector       = ".salary"
	locationSelector     = ".place"
)

// ListingSummary is one candidate listing parsed from an index page.
// Rank is nil when the rank ribbon carries a non-numeric label ("NEW").
type ListingSummary struct {
	CompanyName     string
	Title           string
	DetailURL       string
	Rank            *int
	EmploymentType  string
	SalarySummary   string
	LocationSummary string
}

// ParseIndex parses one ranking page into listing summaries. Blocks without
// a company name are not listings and are dropped silently; a non-numeric
// rank label yields a nil rank rather than dropping the block. Detail links
// are resolved against base.
func ParseIndex(body []byte, base *url.URL, opts RepairOptions) []ListingSummary {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil
	}

	var summaries []ListingSummary
	doc.Find(listingBlockSelector).Each(func(_ int, block *goquery.Selection) {
		company := nodeText(block.Find(companySelector).First())
		salary := nodeText(block.Find(salarySelector).First())
		if company == "" && salary == "" {
			return // ad or navigation card, not a listing
		}
		if company == "" {
			return
		}
		salary = RepairSalary(salary, opts)
		if BelowWageFloor(salary, opts) {
			return
		}

		summary := ListingSummary{
			CompanyName:     company,
			Rank:            ParseRank(nodeText(block.Find(rankSelector).First())),
			SalarySummary:   salary,
			LocationSummary: nodeText(block.Find(locationSelector).First()),
			EmploymentType:  employmentTags(block),
		}
		if link := block.Find(titleLinkSelector).First(); link.Length() > 0 {
			summary.Title = nodeText(link)
			if href, ok := link.Attr("href"); ok {
				summary.DetailURL = resolveURL(base, href)
			}
		}
		summaries = append(summaries, summary)
	})
	return summaries
}

// ParseRank parses a rank ribbon label. Labels that are not pure digits
// ("NEW") yield nil.
func ParseRank(label string) *int {
	label = strings.TrimSpace(label)
	if label == "" {
		return nil
	}
	for _, r := range label {
		if r < '0' || r > '9' {
			return nil
		}
	}
	n, err := strconv.Atoi(label)
	if err != nil {
		return nil
	}
	return &n
}

func employmentTags(block *goquery.Selection) string {
	var tags []string
	block.Find(employmentSelector).Each(func(_ int, s *goquery.Selection) {
		if tag := nodeText(s); tag != "" {
			tags = append(tags, tag)
		}
	})
	return strings.Join(tags, ", ")
}

func resolveURL(base *url.URL, href string) string {
	href = strings.TrimSpace(href)
	if href == "" {
		return ""
	}
	ref, err := url.Parse(href)
	if err != nil {
		return ""
	}
	if base == nil {
		return ref.String()
	}
	return base.ResolveReference(ref).String()
}
