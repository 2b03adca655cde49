// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package extract

import (
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"
)

const (
	maxTitleLen      = 200
	minBodyTitleLen  = 10
	titleScanLines   = 10
	maxAuthors       = 20
	maxAuthorLen     = 100
	authorLabelLines = 5
	emailScanChars   = 3000
	yearScanChars    = 5000
	maxDOILen        = 100
	minAbstractLen   = 50
	maxAbstractLen   = 2000
	minKeywordLen    = 3
	maxKeywordLen    = 50
	maxKeywords      = 10
)

var (
	junkTitleRe = regexp.MustCompile(`(?i)^(untitled|title|document\d*|microsoft word - .*|.*\.(dvi|pdf|docx?|tex|ps))$`)

	pageNumberRe = regexp.MustCompile(`(?i)^(page\s*)?\d+(\s*(of|/)\s*\d+)?$`)
	urlRe        = regexp.MustCompile(`(?i)https?://|www\.`)
	headerRe     = regexp.MustCompile(`(?i)^(arxiv:|preprint|accepted|submitted|published|proceedings|journal|vol\.|volume|issn|isbn|doi|copyright|©|received|manuscript|under review|draft|technical report)`)
	emailRe      = regexp.MustCompile(`[\w.+-]+@[\w-]+\.[\w.-]+`)

	authorSplitRe = regexp.MustCompile(`(?i)\s+and\s+|[;,&]`)
	authorLabelRe = regexp.MustCompile(`(?im)^[ \t]*(?:authors?|by)[ \t]*:[ \t]*(.*)$`)
	namePairRe    = regexp.MustCompile(`\b([A-Z][a-z]+)\s+([A-Z][a-z]+)\b`)

	creationYearRe = regexp.MustCompile(`^(?:D:)?(\d{4})`)
	copyrightRe    = regexp.MustCompile(`(?i)(?:©|\(c\)|copyright)\s*(?:©\s*)?((?:19|20)\d{2})\b`)
	parenYearRe    = regexp.MustCompile(`\(((?:19|20)\d{2})\)`)
	bareYearRe     = regexp.MustCompile(`\b((?:19|20)\d{2})\b`)

	doiRe = regexp.MustCompile(`(?i)(?:doi:\s*|doi\.org/)?(10\.\d{4,}/[^\s]+)`)

	abstractHeadRe = regexp.MustCompile(`(?im)^[ \t]*abstract\b[ \t]*[:.\-—–]?[ \t]*`)
	abstractStopRe = regexp.MustCompile(`(?im)^[ \t]*(?:(?:\d+|[IVX]+)\.?[ \t]*)?(?:introduction|keywords|key words|index terms)\b`)
	blankLineRe    = regexp.MustCompile(`\n[ \t]*\n`)

	keywordsHeadRe = regexp.MustCompile(`(?im)^[ \t]*(?:keywords|key words|index terms)[ \t]*[:.\-—–][ \t]*(.*)$`)
	keywordSplitRe = regexp.MustCompile(`[;,•·]`)
)

// nameStopWords are capitalized words that often sit next to an email
// address but are not part of a person's name.
var nameStopWords = map[string]bool{
	"University": true, "Department": true, "Institute": true, "School": true,
	"College": true, "Laboratory": true, "Research": true, "Center": true,
	"Centre": true, "Faculty": true, "Email": true, "Corresponding": true,
	"Author": true, "Authors": true, "Abstract": true, "Science": true,
	"Engineering": true, "Computer": true, "The": true,
}

// cleanTitle collapses whitespace and caps the length.
func cleanTitle(s string) string {
	s = collapseSpace(s)
	s = strings.Trim(s, `"'`)
	if utf8.RuneCountInString(s) > maxTitleLen {
		s = strings.TrimSpace(string([]rune(s)[:maxTitleLen]))
	}
	return s
}

// TitleFromInfo returns the embedded title property when it is usable.
func TitleFromInfo(title string) Result[string] {
	t := cleanTitle(title)
	if len(t) < 3 || junkTitleRe.MatchString(t) {
		return missing[string]()
	}
	return found(t)
}

// TitleFromText returns the first plausible title line among the first
// lines of body text.
func TitleFromText(text string) Result[string] {
	seen := 0
	for _, line := range strings.Split(text, "\n") {
		line = collapseSpace(line)
		if line == "" {
			continue
		}
		seen++
		if seen > titleScanLines {
			break
		}
		if isPlausibleTitleLine(line) {
			return found(cleanTitle(line))
		}
	}
	return missing[string]()
}

func isPlausibleTitleLine(line string) bool {
	n := utf8.RuneCountInString(line)
	if n < minBodyTitleLen || n > maxTitleLen {
		return false
	}
	if pageNumberRe.MatchString(line) || urlRe.MatchString(line) ||
		headerRe.MatchString(line) || emailRe.MatchString(line) {
		return false
	}
	letters := 0
	for _, r := range line {
		if unicode.IsLetter(r) {
			letters++
		}
	}
	return letters*2 >= n
}

// splitAuthors splits an author string on ";", ",", "&", and " and ".
// Lists longer than maxAuthors are treated as noise.
func splitAuthors(s string) []string {
	var out []string
	seen := make(map[string]bool)
	for _, part := range authorSplitRe.Split(s, -1) {
		name := collapseSpace(part)
		name = strings.TrimRight(name, "*†‡§¶0123456789 ")
		name = strings.TrimLeft(name, "*†‡§¶0123456789 ")
		if name == "" || utf8.RuneCountInString(name) > maxAuthorLen || !hasLetter(name) {
			continue
		}
		if seen[name] {
			continue
		}
		seen[name] = true
		out = append(out, name)
	}
	if len(out) > maxAuthors {
		return nil
	}
	return out
}

func hasLetter(s string) bool {
	return strings.IndexFunc(s, unicode.IsLetter) >= 0
}

// AuthorsFromInfo parses the embedded author property.
func AuthorsFromInfo(author string) Result[[]string] {
	authors := splitAuthors(author)
	if len(authors) == 0 {
		return missing[[]string]()
	}
	return found(authors)
}

// AuthorsFromText parses an "Authors:" or "By:" labelled span of up to
// five lines, stopping at the first blank line.
func AuthorsFromText(text string) Result[[]string] {
	loc := authorLabelRe.FindStringSubmatchIndex(text)
	if loc == nil {
		return missing[[]string]()
	}

	parts := []string{text[loc[2]:loc[3]]}
	rest := strings.TrimPrefix(text[loc[1]:], "\n")
	for _, line := range strings.Split(rest, "\n") {
		if len(parts) >= authorLabelLines || strings.TrimSpace(line) == "" {
			break
		}
		parts = append(parts, line)
	}

	authors := splitAuthors(strings.Join(parts, ", "))
	if len(authors) == 0 {
		return missing[[]string]()
	}
	return found(authors)
}

// AuthorsNearEmails collects "First Last" pairs on lines that contain an
// email address, or on the line just above one.
func AuthorsNearEmails(text string) Result[[]string] {
	if len(text) > emailScanChars {
		text = text[:emailScanChars]
	}
	lines := strings.Split(text, "\n")

	var authors []string
	seen := make(map[string]bool)
	add := func(line string) {
		for _, m := range namePairRe.FindAllStringSubmatch(line, -1) {
			if nameStopWords[m[1]] || nameStopWords[m[2]] {
				continue
			}
			name := m[1] + " " + m[2]
			if !seen[name] {
				seen[name] = true
				authors = append(authors, name)
			}
		}
	}

	for i, line := range lines {
		if !emailRe.MatchString(line) {
			continue
		}
		add(emailRe.ReplaceAllString(line, " "))
		if i > 0 && !emailRe.MatchString(lines[i-1]) {
			add(lines[i-1])
		}
	}

	if len(authors) == 0 || len(authors) > maxAuthors {
		return missing[[]string]()
	}
	return found(authors)
}

func plausibleYear(y int, now time.Time) bool {
	return y >= 1900 && y <= now.Year()+1
}

// YearFromCreationDate reads the year of a PDF date ("D:20230115...") or
// an ISO date.
func YearFromCreationDate(date string, now time.Time) Result[int] {
	m := creationYearRe.FindStringSubmatch(strings.TrimSpace(date))
	if m == nil {
		return missing[int]()
	}
	y, err := strconv.Atoi(m[1])
	if err != nil || !plausibleYear(y, now) {
		return missing[int]()
	}
	return found(y)
}

// YearFromText scores the years found in the opening text. Copyright
// notices weigh most, parenthesised years next, bare years least; ties go
// to the most recent year.
func YearFromText(text string, now time.Time) Result[int] {
	if len(text) > yearScanChars {
		text = text[:yearScanChars]
	}

	scores := make(map[int]int)
	tally := func(re *regexp.Regexp, weight int) {
		for _, m := range re.FindAllStringSubmatch(text, -1) {
			y, err := strconv.Atoi(m[1])
			if err == nil && plausibleYear(y, now) {
				scores[y] += weight
			}
		}
	}
	tally(copyrightRe, 3)
	tally(parenYearRe, 2)
	tally(bareYearRe, 1)

	if len(scores) == 0 {
		return missing[int]()
	}
	years := make([]int, 0, len(scores))
	for y := range scores {
		years = append(years, y)
	}
	sort.Slice(years, func(i, j int) bool {
		if scores[years[i]] != scores[years[j]] {
			return scores[years[i]] > scores[years[j]]
		}
		return years[i] > years[j]
	})
	return found(years[0])
}

// DOIFromText returns the first DOI in text, without trailing punctuation.
func DOIFromText(text string) Result[string] {
	m := doiRe.FindStringSubmatch(text)
	if m == nil {
		return missing[string]()
	}
	doi := trimDOI(m[1])
	if !strings.Contains(doi, "/") || strings.HasSuffix(doi, "/") || len(doi) > maxDOILen {
		return missing[string]()
	}
	return found(doi)
}

// trimDOI strips sentence punctuation from the end of a DOI. A closing
// parenthesis is kept when it balances one inside the DOI.
func trimDOI(doi string) string {
	for doi != "" {
		last := doi[len(doi)-1]
		switch {
		case strings.IndexByte(".,;:'\"]}>", last) >= 0:
			doi = doi[:len(doi)-1]
		case last == ')' && strings.Count(doi, ")") > strings.Count(doi, "("):
			doi = doi[:len(doi)-1]
		default:
			return doi
		}
	}
	return doi
}

// AbstractFromText returns the text between an "Abstract" heading and the
// next Introduction/Keywords heading or blank line. Abstracts outside
// [50, 2000] characters are dropped rather than truncated.
func AbstractFromText(text string) Result[string] {
	loc := abstractHeadRe.FindStringIndex(text)
	if loc == nil {
		return missing[string]()
	}
	rest := strings.TrimLeft(text[loc[1]:], " \t\r\n")

	end := len(rest)
	if l := abstractStopRe.FindStringIndex(rest); l != nil && l[0] < end {
		end = l[0]
	}
	if l := blankLineRe.FindStringIndex(rest); l != nil && l[0] < end {
		end = l[0]
	}

	abstract := collapseSpace(rest[:end])
	n := utf8.RuneCountInString(abstract)
	if n < minAbstractLen || n > maxAbstractLen {
		return missing[string]()
	}
	return found(abstract)
}

// KeywordsFromText parses the list after a "Keywords:" heading. A list that
// ends with a separator continues on the next line.
func KeywordsFromText(text string) Result[[]string] {
	loc := keywordsHeadRe.FindStringSubmatchIndex(text)
	if loc == nil {
		return missing[[]string]()
	}

	raw := text[loc[2]:loc[3]]
	next := strings.SplitN(strings.TrimPrefix(text[loc[1]:], "\n"), "\n", 3)
	for i := 0; i < 2 && i < len(next); i++ {
		if !endsWithSeparator(raw) || strings.TrimSpace(next[i]) == "" {
			break
		}
		raw += " " + next[i]
	}

	var keywords []string
	seen := make(map[string]bool)
	for _, part := range keywordSplitRe.Split(raw, -1) {
		kw := strings.TrimRight(collapseSpace(part), ".")
		n := utf8.RuneCountInString(kw)
		if n < minKeywordLen || n >= maxKeywordLen {
			continue
		}
		key := strings.ToLower(kw)
		if seen[key] {
			continue
		}
		seen[key] = true
		keywords = append(keywords, kw)
		if len(keywords) == maxKeywords {
			break
		}
	}

	if len(keywords) == 0 {
		return missing[[]string]()
	}
	return found(keywords)
}

func endsWithSeparator(s string) bool {
	r, _ := utf8.DecodeLastRuneInString(strings.TrimSpace(s))
	return strings.ContainsRune(",;•·", r)
}
