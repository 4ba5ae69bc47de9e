package types

import "time"

// Brand is a car manufacturer known to the API
type Brand struct {
	ID   int64  `json:"id" yaml:"id"`
	Name string `json:"name" yaml:"name"`
}

// Image describes the picture attached to a car
type Image struct {
	ID       int64  `json:"id" yaml:"id"`
	Filename string `json:"filename" yaml:"filename"`
	FullPath string `json:"fullPath" yaml:"fullPath"`
}

// Car is a transient, possibly stale copy of a server-owned car record
type Car struct {
	ID              *int64        `json:"id,omitempty" yaml:"id,omitempty"`
	Brand           Brand         `json:"brand" yaml:"brand"`
	Specification   string        `json:"specification" yaml:"specification"`
	EngineLiter     float64       `json:"engineLiter" yaml:"engineLiter"`
	IsNew           bool          `json:"isNew" yaml:"isNew"`
	Price           float64       `json:"price" yaml:"price"`
	ReleaseDateTime LocalDateTime `json:"releaseDateTime" yaml:"releaseDateTime"`
	Image           *Image        `json:"image,omitempty" yaml:"image,omitempty"`
}

// HasID reports whether the server has assigned an identifier
func (c Car) HasID() bool {
	return c.ID != nil
}

// IDValue returns the identifier or 0 when it is not assigned yet
func (c Car) IDValue() int64 {
	if c.ID == nil {
		return 0
	}
	return *c.ID
}

// ImageFilename returns the attached image filename, if any
func (c Car) ImageFilename() string {
	if c.Image == nil {
		return ""
	}
	return c.Image.Filename
}

// CarDraft is the payload submitted when creating or updating a car.
// Brand is resolved from BrandID by the caller before a create.
type CarDraft struct {
	BrandID         int64          `json:"brandId,omitempty"`
	Brand           *Brand         `json:"brand,omitempty"`
	Specification   string         `json:"specification,omitempty"`
	EngineLiter     *float64       `json:"engineLiter,omitempty"`
	IsNew           *bool          `json:"isNew,omitempty"`
	Price           *float64       `json:"price,omitempty"`
	ReleaseDateTime *LocalDateTime `json:"releaseDateTime,omitempty"`
}

// DraftFromCar prefills a draft from an existing record (edit form)
func DraftFromCar(c Car) CarDraft {
	engine := c.EngineLiter
	isNew := c.IsNew
	price := c.Price
	release := c.ReleaseDateTime
	brand := c.Brand
	return CarDraft{
		BrandID:         c.Brand.ID,
		Brand:           &brand,
		Specification:   c.Specification,
		EngineLiter:     &engine,
		IsNew:           &isNew,
		Price:           &price,
		ReleaseDateTime: &release,
	}
}

// SortDirection is the ordering applied to a sort key
type SortDirection string

const (
	SortAsc  SortDirection = "asc"
	SortDesc SortDirection = "desc"
)

// Flip returns the opposite direction
func (d SortDirection) Flip() SortDirection {
	if d == SortAsc {
		return SortDesc
	}
	return SortAsc
}

// SortKey names a car column the list can be ordered by
type SortKey string

const (
	SortNone            SortKey = ""
	SortID              SortKey = "id"
	SortBrand           SortKey = "brand"
	SortSpecification   SortKey = "specification"
	SortEngineLiter     SortKey = "engineLiter"
	SortIsNew           SortKey = "isNew"
	SortPrice           SortKey = "price"
	SortReleaseDateTime SortKey = "releaseDateTime"
)

// SortKeys lists the sortable columns in display order
var SortKeys = []SortKey{
	SortBrand,
	SortSpecification,
	SortEngineLiter,
	SortIsNew,
	SortPrice,
	SortReleaseDateTime,
	SortID,
}

// ParseSortKey validates a user supplied sort key
func ParseSortKey(s string) (SortKey, bool) {
	if s == "" {
		return SortNone, true
	}
	for _, k := range SortKeys {
		if string(k) == s {
			return k, true
		}
	}
	return SortNone, false
}

// OrDefault returns the key sent to the server; an unset key means id
func (k SortKey) OrDefault() SortKey {
	if k == SortNone {
		return SortID
	}
	return k
}

// PageQuery carries everything needed to request one page of cars
type PageQuery struct {
	Page       int
	Size       int
	SortBy     SortKey
	SortDir    SortDirection
	SearchTerm string
	Filters    FilterCriteria
}

// PageResult is one page of cars plus pagination metadata
type PageResult struct {
	Content       []Car `json:"content" yaml:"content"`
	PageNo        int   `json:"pageNo" yaml:"pageNo"`
	PageSize      int   `json:"pageSize" yaml:"pageSize"`
	TotalElements int64 `json:"totalElements" yaml:"totalElements"`
	TotalPages    int   `json:"totalPages" yaml:"totalPages"`
	Last          bool  `json:"last" yaml:"last"`
}

// Credentials is the login request body
type Credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// TokenResponse is the login response body
type TokenResponse struct {
	Token string `json:"token"`
}

// Session is the persisted authentication state
type Session struct {
	Token    string    `json:"token,omitempty"`
	Username string    `json:"username,omitempty"`
	IssuedAt time.Time `json:"issuedAt,omitempty"`
	BaseURL  string    `json:"baseUrl,omitempty"`
}

// HistoryEntry is one recorded API call
type HistoryEntry struct {
	ID        int64     `json:"id" yaml:"id"`
	Timestamp time.Time `json:"timestamp" yaml:"timestamp"`
	Method    string    `json:"method" yaml:"method"`
	Path      string    `json:"path" yaml:"path"`
	Status    int       `json:"status" yaml:"status"`
	Duration  int64     `json:"duration" yaml:"duration"` // milliseconds
	Error     string    `json:"error,omitempty" yaml:"error,omitempty"`
	Username  string    `json:"username,omitempty" yaml:"username,omitempty"`
}

// RouteStats aggregates the recorded calls of one method and route.
// Numeric path segments are folded into {id} so /car/3 and /car/7 share a row.
type RouteStats struct {
	Method        string      `json:"method" yaml:"method"`
	Route         string      `json:"route" yaml:"route"`
	TotalCalls    int         `json:"totalCalls" yaml:"totalCalls"`
	SuccessCount  int         `json:"successCount" yaml:"successCount"`
	ErrorCount    int         `json:"errorCount" yaml:"errorCount"`
	NetworkErrors int         `json:"networkErrors" yaml:"networkErrors"` // status 0
	AvgDurationMs float64     `json:"avgDurationMs" yaml:"avgDurationMs"`
	MinDurationMs int64       `json:"minDurationMs" yaml:"minDurationMs"`
	MaxDurationMs int64       `json:"maxDurationMs" yaml:"maxDurationMs"`
	StatusCodes   map[int]int `json:"statusCodes" yaml:"statusCodes"`
	LastCalled    time.Time   `json:"lastCalled" yaml:"lastCalled"`
}
