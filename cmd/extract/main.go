// Command extract runs the measurement extractor on a single field visit
// file, outside the Kafka pipeline. It is useful for spot-checking how a
// visit's observation sections map to time-stamped measurement records.
//
// Usage:
//
//	go run ./cmd/extract \
//	  -in visit.json \
//	  -station 05BB001 \
//	  -date 2020-06-15 \
//	  -offset -06:00 \
//	  -out records.json
//
// The input file holds a single field visit object. With no -out flag the
// extracted records are written to stdout.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/hydrometrics/ehsn-measurements-etl/internal/domain"
	"github.com/jonboulle/clockwork"
)

func main() {
	in := flag.String("in", "", "path to a field visit JSON file")
	station := flag.String("station", "", "station number, e.g. 05BB001")
	date := flag.String("date", "", "visit date as YYYY-MM-DD")
	offset := flag.String("offset", "-06:00", "station UTC offset as ±HH:MM")
	out := flag.String("out", "", "output path (default stdout)")
	flag.Parse()

	if *in == "" || *station == "" || *date == "" {
		flag.Usage()
		os.Exit(1)
	}

	if err := run(*in, *station, *date, *offset, *out); err != nil {
		fmt.Fprintf(os.Stderr, "extract: %v\n", err)
		os.Exit(1)
	}
}

func run(inPath, station, date, offset, outPath string) error {
	visitDate, err := time.Parse("2006-01-02", date)
	if err != nil {
		return fmt.Errorf("parse -date: %w", err)
	}

	utcOffset, err := domain.ParseUTCOffset(offset)
	if err != nil {
		return fmt.Errorf("parse -offset: %w", err)
	}

	// Fix the clock to the visit date so regenerating a fixture from the
	// same input yields identical output.
	domain.SetClock(clockwork.NewFakeClockAt(visitDate))
	defer domain.SetClock(nil)

	data, err := os.ReadFile(inPath)
	if err != nil {
		return err
	}

	var visit domain.FieldVisit
	if err := json.Unmarshal(data, &visit); err != nil {
		return fmt.Errorf("parse visit file: %w", err)
	}

	extractor, err := domain.NewExtractor(&visit, visitDate, utcOffset)
	if err != nil {
		return err
	}

	result, err := extractor.Parse()
	if err != nil {
		return err
	}
	result.StationNo = station
	result.VisitDate = date
	result.VisitID = domain.VisitID(station, date)

	output, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal records: %w", err)
	}
	output = append(output, '\n')

	if outPath == "" {
		_, err = os.Stdout.Write(output)
		return err
	}
	if err := os.WriteFile(outPath, output, 0o644); err != nil {
		return err
	}
	fmt.Printf("wrote %d records to %s\n", result.RecordCount(), outPath)
	return nil
}
