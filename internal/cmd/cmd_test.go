package cmd

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"sweetshop/internal/catalog"
)

func TestSweepInterval(t *testing.T) {
	assert.Equal(t, time.Second, sweepInterval(2*time.Second))
	assert.Equal(t, 15*time.Second, sweepInterval(time.Minute))
	assert.Equal(t, time.Minute, sweepInterval(30*time.Minute))
}

func TestPrintReport(t *testing.T) {
	var buf bytes.Buffer
	printReport(&buf, catalog.Report{Categories: 2, Products: 5, ImagesDir: "img", MissingImages: []catalog.MissingImage{{Product: "p1", Image: "t.jpg"}}})

	out := buf.String()
	assert.Contains(t, out, "2 categories, 5 products")
	assert.Contains(t, out, "t.jpg (product p1)")

	buf.Reset()
	printReport(&buf, catalog.Report{ImagesDir: "img", MissingImages: []catalog.MissingImage{}})
	assert.Contains(t, buf.String(), "All product images present in img")
}

func TestCommandsAreRegistered(t *testing.T) {
	names := map[string]bool{}
	for _, c := range rootCmd.Commands() {
		names[c.Name()] = true
	}
	assert.True(t, names["serve"])
	assert.True(t, names["verify-products"])
}
