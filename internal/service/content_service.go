package service

import (
	"bytes"
	"errors"
	"fmt"
	"strings"
	"text/template"
	"unicode"

	"github.com/maheshrc27/autopost/internal/models"
	"github.com/maheshrc27/autopost/internal/transfer"
)

const (
	defaultPostCount = 5
	maxPostCount     = 50
)

var ErrBusinessNameRequired = errors.New("business name is required")

var contentTemplates = template.Must(template.New("content").Parse(`
{{define "promotion"}}{{if .Offer}}{{.Offer}} at {{.Name}}!{{else}}Discover what {{.Name}} has to offer!{{end}}{{if .Description}} {{.Description}}{{end}}{{if .Location}} Visit us in {{.Location}}.{{end}}{{if .Website}} {{.Website}}{{end}}{{end}}
{{define "tip"}}Tip from the {{or .Industry "team"}} experts at {{.Name}}: {{if .TargetAudience}}{{.TargetAudience}} get the most out of every visit by booking ahead.{{else}}plan ahead and ask us anything.{{end}}{{if .Phone}} Call {{.Phone}}.{{end}}{{end}}
{{define "story"}}Behind the scenes at {{.Name}}{{if .Location}} in {{.Location}}{{end}}. {{if .Description}}{{.Description}}{{else}}Every day we work to do right by our customers.{{end}}{{end}}
{{define "testimonial"}}"{{.Name}} exceeded every expectation." That is what our customers keep telling us.{{if .TargetAudience}} Made for {{.TargetAudience}}.{{end}}{{end}}
{{define "announcement"}}News from {{.Name}}!{{if .Offer}} {{.Offer}}.{{end}} Follow along for updates{{if .Website}} or visit {{.Website}}{{end}}.{{end}}
`))

var contentKinds = []string{"promotion", "tip", "story", "testimonial", "announcement"}

type ContentService interface {
	Generate(info transfer.BusinessInfo, platforms []models.Platform, count int) ([]models.NormalizedPost, error)
}

type contentService struct{}

func NewContentService() ContentService {
	return &contentService{}
}

// Generate renders count posts from the fixed templates, assigning platforms
// round robin. Posts carry media only when the business supplied it.
func (s *contentService) Generate(info transfer.BusinessInfo, platforms []models.Platform, count int) ([]models.NormalizedPost, error) {
	if strings.TrimSpace(info.Name) == "" {
		return nil, ErrBusinessNameRequired
	}
	if len(platforms) == 0 {
		platforms = models.Platforms
	}
	if count <= 0 {
		count = defaultPostCount
	}
	if count > maxPostCount {
		count = maxPostCount
	}

	hashtags := businessHashtags(info)
	posts := make([]models.NormalizedPost, 0, count)

	for i := 0; i < count; i++ {
		kind := contentKinds[i%len(contentKinds)]

		var buf bytes.Buffer
		if err := contentTemplates.ExecuteTemplate(&buf, kind, info); err != nil {
			return nil, fmt.Errorf("rendering %s template: %w", kind, err)
		}

		post := models.NormalizedPost{
			Text:     strings.TrimSpace(buf.String()),
			Platform: string(platforms[i%len(platforms)]),
			Type:     models.PostTypeText,
			Hashtags: hashtags,
		}

		switch {
		case info.VideoURL != "" && i%3 == 2:
			post.Type = models.PostTypeVideo
			post.VideoURL = info.VideoURL
			post.Title = fmt.Sprintf("%s | %s", info.Name, strings.ToUpper(kind[:1])+kind[1:])
		case len(info.Images) > 0:
			post.Type = models.PostTypeImage
			post.ImageURL = info.Images[i%len(info.Images)]
			post.AltText = fmt.Sprintf("%s %s", info.Name, kind)
		}

		posts = append(posts, post)
	}
	return posts, nil
}

func businessHashtags(info transfer.BusinessInfo) []string {
	var tags []string
	for _, v := range []string{info.Name, info.Industry, info.Location} {
		if tag := hashtag(v); tag != "" {
			tags = append(tags, tag)
		}
	}
	return tags
}

func hashtag(s string) string {
	var b strings.Builder
	for _, r := range s {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}
