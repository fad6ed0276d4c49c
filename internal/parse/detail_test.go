package parse

import (
	"testing"

	"github.com/stretchr/testify/require"
)

const detailPage = `<!DOCTYPE html>
<html><body>
<main>
	<header class="mod-page-title">株式会社Acme シニアエンジニア</header>
	<nav class="detail-local-nav">募集要項 企業情報</nav>
	<section class="bosyuarea">フルリモート可 年収500万円〜</section>
	<section class="sugaoarea">社員インタビュー</section>
	<section class="kigyogaiyo">設立 2001年</section>
	<section class="aboutoubo">書類選考 → 面接2回</section>
	<section class="mod-button-holder">応募する</section>
	<section class="mod-button-holder">検討リストに保存</section>
	<section class="mod-search-index">Java の求人</section>
	<section class="mod-search-index">リモート の求人</section>
</main>
<footer>フッター</footer>
</body></html>`

func TestParseDetail(t *testing.T) {
	t.Parallel()

	fields := ParseDetail([]byte(detailPage))
	require.Len(t, fields, len(DetailRules))

	require.Equal(t, "株式会社Acme シニアエンジニア", fields["page_title"])
	require.Equal(t, "募集要項 企業情報", fields["local_nav"])
	require.Equal(t, "フルリモート可 年収500万円〜", fields["job_content"])
	require.Equal(t, "社員インタビュー", fields["company_profile"])
	require.Equal(t, "設立 2001年", fields["company_info"])
	require.Equal(t, "書類選考 → 面接2回", fields["application_process"])
	require.Equal(t, "応募する | 検討リストに保存", fields["button_holder"])
	require.Equal(t, "Java の求人 | リモート の求人", fields["search_index"])

	// Absent sections degrade to empty fields, not errors.
	require.Equal(t, "", fields["main_article"])
	require.Equal(t, "", fields["other_occupations"])
	require.Equal(t, "", fields["recommendations"])
}

func TestParseDetailWithoutMainRegion(t *testing.T) {
	t.Parallel()

	fields := ParseDetail([]byte(`<html><body><section class="bosyuarea">outside main</section></body></html>`))
	require.Len(t, fields, len(DetailRules))
	for name, value := range fields {
		require.Empty(t, value, "field %s should be empty without a main region", name)
	}
}

func TestParseDetailEmptyBody(t *testing.T) {
	t.Parallel()

	fields := ParseDetail(nil)
	require.Len(t, fields, len(DetailRules))
	for _, value := range fields {
		require.Empty(t, value)
	}
}

func TestDetailFieldNamesMatchRuleOrder(t *testing.T) {
	t.Parallel()

	names := DetailFieldNames()
	require.Equal(t, len(DetailRules), len(names))
	require.Equal(t, "page_title", names[0])
	require.Equal(t, "search_index", names[len(names)-1])
}
