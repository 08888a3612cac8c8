package telemetry

import (
	"encoding/json"
	"net/http"
	"sort"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
)

// Point is one data point of a collected metric in a JSON-friendly form.
// Sums fill Value; histograms fill Count and Sum.
type Point struct {
	Name       string            `json:"name"`
	Attributes map[string]string `json:"attributes,omitempty"`
	Value      *float64          `json:"value,omitempty"`
	Count      *uint64           `json:"count,omitempty"`
	Sum        *float64          `json:"sum,omitempty"`
}

// Summarize flattens collected metrics, sorted by name.
func Summarize(rm *metricdata.ResourceMetrics) []Point {
	var out []Point
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			switch data := m.Data.(type) {
			case metricdata.Sum[int64]:
				for _, dp := range data.DataPoints {
					v := float64(dp.Value)
					out = append(out, Point{Name: m.Name, Attributes: attrMap(dp.Attributes), Value: &v})
				}
			case metricdata.Sum[float64]:
				for _, dp := range data.DataPoints {
					v := dp.Value
					out = append(out, Point{Name: m.Name, Attributes: attrMap(dp.Attributes), Value: &v})
				}
			case metricdata.Histogram[float64]:
				for _, dp := range data.DataPoints {
					c, s := dp.Count, dp.Sum
					out = append(out, Point{Name: m.Name, Attributes: attrMap(dp.Attributes), Count: &c, Sum: &s})
				}
			}
		}
	}

	sort.SliceStable(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

func attrMap(set attribute.Set) map[string]string {
	if set.Len() == 0 {
		return nil
	}
	m := make(map[string]string, set.Len())
	for _, kv := range set.ToSlice() {
		m[string(kv.Key)] = kv.Value.Emit()
	}
	return m
}

// Handler serves the current metrics as a JSON array.
func (p *Provider) Handler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rm, err := p.Collect(r.Context())
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(Summarize(rm))
	})
}
