package runner

import "time"

// Session is a completed timing session: every iteration of one URL in one
// browser, plus statistics over them.
type Session struct {
	ID         string               `json:"id" yaml:"id"`
	URL        string               `json:"url" yaml:"url"`
	Browser    Browser              `json:"browser" yaml:"browser"`
	StartedAt  time.Time            `json:"startedAt" yaml:"startedAt"`
	Duration   time.Duration        `json:"-" yaml:"-"`
	Iterations []Iteration          `json:"-" yaml:"-"`
	Statistics map[string]Statistic `json:"statistics" yaml:"statistics"`
}

// Browser describes the browser the session ran in, as reported by the
// driver and the page.
type Browser struct {
	Name      string `json:"name" yaml:"name"`
	Version   string `json:"version" yaml:"version"`
	UserAgent string `json:"userAgent" yaml:"userAgent"`
}

// Iteration is one page load.
type Iteration struct {
	Number   int                `json:"number" yaml:"number"`
	Timing   NavigationTiming   `json:"navigationTiming" yaml:"navigationTiming"`
	Metrics  map[string]float64 `json:"metrics" yaml:"metrics"`
	Marks    []UserTiming       `json:"marks,omitempty" yaml:"marks,omitempty"`
	Measures []UserTiming       `json:"measures,omitempty" yaml:"measures,omitempty"`
}

// UserTiming is a performance mark or measure recorded by the page.
type UserTiming struct {
	Name      string  `json:"name" yaml:"name"`
	StartTime float64 `json:"startTime" yaml:"startTime"`
	Duration  float64 `json:"duration" yaml:"duration"`
}

// NavigationTiming mirrors window.performance.timing. Values are
// milliseconds since the epoch; zero means the event did not happen.
type NavigationTiming struct {
	NavigationStart            int64 `json:"navigationStart" yaml:"navigationStart"`
	UnloadEventStart           int64 `json:"unloadEventStart" yaml:"unloadEventStart"`
	UnloadEventEnd             int64 `json:"unloadEventEnd" yaml:"unloadEventEnd"`
	RedirectStart              int64 `json:"redirectStart" yaml:"redirectStart"`
	RedirectEnd                int64 `json:"redirectEnd" yaml:"redirectEnd"`
	FetchStart                 int64 `json:"fetchStart" yaml:"fetchStart"`
	DomainLookupStart          int64 `json:"domainLookupStart" yaml:"domainLookupStart"`
	DomainLookupEnd            int64 `json:"domainLookupEnd" yaml:"domainLookupEnd"`
	ConnectStart               int64 `json:"connectStart" yaml:"connectStart"`
	ConnectEnd                 int64 `json:"connectEnd" yaml:"connectEnd"`
	SecureConnectionStart      int64 `json:"secureConnectionStart" yaml:"secureConnectionStart"`
	RequestStart               int64 `json:"requestStart" yaml:"requestStart"`
	ResponseStart              int64 `json:"responseStart" yaml:"responseStart"`
	ResponseEnd                int64 `json:"responseEnd" yaml:"responseEnd"`
	DomLoading                 int64 `json:"domLoading" yaml:"domLoading"`
	DomInteractive             int64 `json:"domInteractive" yaml:"domInteractive"`
	DomContentLoadedEventStart int64 `json:"domContentLoadedEventStart" yaml:"domContentLoadedEventStart"`
	DomContentLoadedEventEnd   int64 `json:"domContentLoadedEventEnd" yaml:"domContentLoadedEventEnd"`
	DomComplete                int64 `json:"domComplete" yaml:"domComplete"`
	LoadEventStart             int64 `json:"loadEventStart" yaml:"loadEventStart"`
	LoadEventEnd               int64 `json:"loadEventEnd" yaml:"loadEventEnd"`
}

// Metric names derived from navigation timing.
const (
	MetricDomainLookupTime     = "domainLookupTime"
	MetricRedirectionTime      = "redirectionTime"
	MetricServerConnectionTime = "serverConnectionTime"
	MetricServerResponseTime   = "serverResponseTime"
	MetricPageDownloadTime     = "pageDownloadTime"
	MetricDomInteractiveTime   = "domInteractiveTime"
	MetricDomContentLoadedTime = "domContentLoadedTime"
	MetricPageLoadTime         = "pageLoadTime"
	MetricFrontEndTime         = "frontEndTime"
	MetricBackEndTime          = "backEndTime"
)

// Metrics derives the standard page timing metrics, in milliseconds.
func (t NavigationTiming) Metrics() map[string]float64 {
	span := func(from, to int64) float64 { return float64(to - from) }
	return map[string]float64{
		MetricDomainLookupTime:     span(t.DomainLookupStart, t.DomainLookupEnd),
		MetricRedirectionTime:      span(t.NavigationStart, t.FetchStart),
		MetricServerConnectionTime: span(t.ConnectStart, t.ConnectEnd),
		MetricServerResponseTime:   span(t.RequestStart, t.ResponseStart),
		MetricPageDownloadTime:     span(t.ResponseStart, t.ResponseEnd),
		MetricDomInteractiveTime:   span(t.NavigationStart, t.DomInteractive),
		MetricDomContentLoadedTime: span(t.NavigationStart, t.DomContentLoadedEventStart),
		MetricPageLoadTime:         span(t.NavigationStart, t.LoadEventStart),
		MetricFrontEndTime:         span(t.ResponseEnd, t.LoadEventStart),
		MetricBackEndTime:          span(t.NavigationStart, t.ResponseStart),
	}
}
