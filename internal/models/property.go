package models

import "time"

var PropertyTypes = []string{"novostroyki", "secondary", "rent", "countryside", "invest"}

// PropertyTypeLabels — подписи типов недвижимости для сайта и дашборда.
var PropertyTypeLabels = map[string]string{
	"novostroyki": "Новостройки",
	"secondary":   "Вторичное жилье",
	"rent":        "Аренда",
	"countryside": "Загородная недвижимость",
	"invest":      "Инвестиционная недвижимость",
}

type Property struct {
	ID           string          `json:"id"`
	Title        string          `json:"title"`
	Type         string          `json:"type"`
	Price        float64         `json:"price"`
	Address      string          `json:"address"`
	Area         float64         `json:"area"`
	Rooms        int             `json:"rooms"`
	Description  string          `json:"description"`
	MainPhotoURL *string         `json:"mainPhotoUrl,omitempty"`
	IsActive     bool            `json:"isActive"`
	CreatedAt    time.Time       `json:"createdAt"`
	Images       []PropertyImage `json:"images"`
}

type PropertyImage struct {
	ID     string `json:"id"`
	URL    string `json:"url"`
	IsMain bool   `json:"isMain"`
	Order  int    `json:"order"`
}

type PropertyRequest struct {
	Title       string                 `json:"title" binding:"required"`
	Type        string                 `json:"type" binding:"required"`
	Price       float64                `json:"price"`
	Address     string                 `json:"address"`
	Area        float64                `json:"area"`
	Rooms       int                    `json:"rooms"`
	Description string                 `json:"description"`
	IsActive    bool                   `json:"isActive"`
	Images      []PropertyImageRequest `json:"images,omitempty"`
}

type PropertyImageRequest struct {
	URL    string `json:"url" binding:"required"`
	IsMain bool   `json:"isMain"`
}

// PropertyFilter — фильтры публичного каталога.
type PropertyFilter struct {
	Types      []string
	PriceMin   float64
	PriceMax   float64
	AreaMin    float64
	AreaMax    float64
	Rooms      []int
	OnlyActive bool
}
