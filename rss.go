package adminpanel

import (
	"encoding/xml"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/eringen/adminpanel/model"
)

type rssXML struct {
	XMLName xml.Name   `xml:"rss"`
	Version string     `xml:"version,attr"`
	Channel rssChannel `xml:"channel"`
}

type rssChannel struct {
	Title       string    `xml:"title"`
	Link        string    `xml:"link"`
	Description string    `xml:"description"`
	Items       []rssItem `xml:"item"`
}

type rssItem struct {
	Title       string   `xml:"title"`
	Link        string   `xml:"link"`
	Description string   `xml:"description"`
	Categories  []string `xml:"category,omitempty"`
	GUID        rssGUID  `xml:"guid"`
}

type rssGUID struct {
	IsPermaLink bool   `xml:"isPermaLink,attr"`
	Value       string `xml:",chardata"`
}

func (a *App) renderRSS(c echo.Context, categoryID, category string, blogs []model.Blog) error {
	pageURL := BuildURL(a.Config.URL, "blogs", "category", categoryID)
	items := make([]rssItem, 0, len(blogs))
	for _, b := range blogs {
		items = append(items, rssItem{
			Title:       b.Name,
			Link:        pageURL + "#" + b.ID,
			Description: b.Intro,
			Categories:  FilterEmpty(b.Tags),
			GUID:        rssGUID{Value: b.ID},
		})
	}
	feed := rssXML{
		Version: "2.0",
		Channel: rssChannel{
			Title:       category + " | " + a.Config.Name,
			Link:        pageURL,
			Description: "Posts in " + category,
			Items:       items,
		},
	}
	c.Response().Header().Set(echo.HeaderContentType, "application/rss+xml; charset=utf-8")
	c.Response().WriteHeader(http.StatusOK)
	c.Response().Write([]byte(xml.Header))
	return xml.NewEncoder(c.Response()).Encode(feed)
}
