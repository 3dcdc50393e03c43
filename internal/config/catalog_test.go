package config

import (
	"errors"
	"testing"

	"github.com/smartystreets/goconvey/convey"
)

func TestDefaultCatalog(t *testing.T) {
	convey.Convey("Given the embedded catalog", t, func() {
		c := DefaultCatalog()

		convey.Convey("Then categories keep their table order", func() {
			convey.So(c.Names(), convey.ShouldResemble,
				[]string{"marketing", "sales", "productivity", "developer_tools", "general"})
			convey.So(c.DefaultName(), convey.ShouldEqual, "general")
		})

		convey.Convey("Then lookups are case-insensitive and fall back to general", func() {
			convey.So(c.Resolve(" Sales "), convey.ShouldEqual, "sales")
			convey.So(c.Resolve("knitting"), convey.ShouldEqual, "general")
			convey.So(c.Resolve(""), convey.ShouldEqual, "general")
			convey.So(c.Lookup("knitting"), convey.ShouldResemble, c.Lookup("general"))
			convey.So(c.Known("DEVELOPER_TOOLS"), convey.ShouldBeTrue)
			convey.So(c.Known("knitting"), convey.ShouldBeFalse)
		})

		convey.Convey("Then the category values are populated", func() {
			sales := c.Lookup("sales")
			convey.So(sales.Subreddits, convey.ShouldResemble, []string{"sales", "smallbusiness", "startups"})
			convey.So(sales.TypicalCost, convey.ShouldEqual, 7000)
			convey.So(sales.Backgrounds["sales"], convey.ShouldEqual, 40)
		})

		convey.Convey("Then callers cannot mutate the table", func() {
			cat := c.Lookup("marketing")
			cat.Subreddits[0] = "hijacked"
			cat.Backgrounds["marketer"] = 0
			again := c.Lookup("marketing")
			convey.So(again.Subreddits[0], convey.ShouldEqual, "marketing")
			convey.So(again.Backgrounds["marketer"], convey.ShouldEqual, 40)
		})
	})
}

func TestParseCatalogValidation(t *testing.T) {
	convey.Convey("Given broken catalogs", t, func() {
		cases := map[string]string{
			"not yaml":          "categories: [",
			"empty":             "categories: []",
			"no keywords":       "categories:\n  - name: general\n    subreddits: [a]\n",
			"duplicate":         "categories:\n  - {name: general, subreddits: [a], keywords: [b]}\n  - {name: General, subreddits: [a], keywords: [b]}\n",
			"undefined default": "default: sales\ncategories:\n  - {name: general, subreddits: [a], keywords: [b]}\n",
		}
		for name, raw := range cases {
			convey.Convey("Then "+name+" is rejected", func() {
				_, err := ParseCatalog([]byte(raw))
				convey.So(errors.Is(err, ErrInvalidConfig), convey.ShouldBeTrue)
			})
		}
	})
}
