// Package e2e provides end-to-end ingestion tests over a generated PDF library.
package e2e

import (
	"fmt"
	"path/filepath"
	"strings"
	"testing"

	"github.com/hyperjump/kura/internal/extract/extracttest"
)

// CorpusFile is one generated PDF: a file name and the text of each page.
type CorpusFile struct {
	Name  string
	Pages []string
}

// Corpus is a set of PDFs to write into a data directory.
type Corpus struct {
	Files      []CorpusFile
	TotalPages int
}

var topics = []struct {
	title   string
	content string
}{
	{"Monsoon Rainfall", "The monsoon brings most of the annual rainfall between June and September. Rain gauges are read every morning at eight."},
	{"River Flooding", "River levels rise within hours of heavy rain upstream. Flood warnings are issued when the gauge passes the danger mark."},
	{"Soil Moisture", "Soil moisture sensors report volumetric water content. Readings above forty percent indicate saturated ground."},
	{"Crop Calendar", "Rice is transplanted after the first sustained rains. Harvest follows roughly one hundred and twenty days later."},
	{"Irrigation Canals", "Canal gates are opened on a rotation schedule. Each distributary receives water for three days in turn."},
	{"Groundwater", "Groundwater tables are measured in observation wells twice a year. Pre-monsoon levels are usually the lowest."},
	{"Reservoir Operations", "Reservoirs hold back inflow during peak floods. Spillway releases follow the rule curve for the season."},
	{"Drought Indices", "The standardized precipitation index compares rainfall to the long-term mean. Negative values indicate drier conditions."},
	{"Weather Stations", "Automatic weather stations log temperature humidity and wind speed. Data is uploaded every fifteen minutes."},
	{"Cyclone Tracking", "Cyclones are tracked using satellite imagery and ocean buoys. Landfall forecasts are updated every six hours."},
	{"Heat Waves", "A heat wave is declared when maximum temperatures stay far above normal. Outdoor work hours are shortened."},
	{"Snowmelt", "Spring snowmelt feeds rivers in the foothills. Early melt shifts peak discharge toward April."},
	{"Evaporation Pans", "Class A pans measure open water evaporation. Pan readings are corrected with a seasonal coefficient."},
	{"Water Quality", "Samples are tested for turbidity nitrate and dissolved oxygen. Results are compared against drinking water limits."},
	{"Watershed Mapping", "Watershed boundaries are derived from elevation models. Each sub-basin drains to a single outlet."},
	{"Coastal Erosion", "Storm surges remove sand from exposed beaches. Shoreline positions are surveyed after every major storm."},
	{"Urban Drainage", "Storm drains are sized for a ten year return period. Blocked inlets cause local flooding in low streets."},
	{"Landslide Risk", "Steep slopes fail after prolonged rain saturates the soil. Risk maps combine slope rainfall and land cover."},
	{"Climate Normals", "Climate normals are thirty year averages of observed weather. They are recomputed at the start of each decade."},
	{"Seasonal Forecast", "Seasonal outlooks give probabilities of above or below normal rainfall. They are issued before each season starts."},
}

// BuildCorpus returns files PDFs with pagesPerFile pages each. Every page concatenates
// topicsPerPage topic paragraphs so pages are long enough to split into several chunks.
func BuildCorpus(files, pagesPerFile, topicsPerPage int) *Corpus {
	c := &Corpus{}
	n := 0
	for f := 0; f < files; f++ {
		file := CorpusFile{Name: fmt.Sprintf("report-%03d.pdf", f+1)}
		for p := 0; p < pagesPerFile; p++ {
			var b strings.Builder
			for k := 0; k < topicsPerPage; k++ {
				t := topics[n%len(topics)]
				n++
				if k > 0 {
					b.WriteString(" ")
				}
				fmt.Fprintf(&b, "%s. %s", t.title, t.content)
			}
			file.Pages = append(file.Pages, b.String())
		}
		c.Files = append(c.Files, file)
		c.TotalPages += len(file.Pages)
	}
	return c
}

// WriteTo writes every corpus file into dir.
func (c *Corpus) WriteTo(t testing.TB, dir string) {
	t.Helper()
	for _, f := range c.Files {
		extracttest.WritePDF(t, filepath.Join(dir, f.Name), f.Pages...)
	}
}
