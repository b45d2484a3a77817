package ecb

import (
	"archive/zip"
	"bytes"
	"encoding/csv"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path"
	"strings"
	"time"

	"github.com/SscSPs/ecb_rates_pipeline/internal/apperrors"
	"github.com/SscSPs/ecb_rates_pipeline/internal/core/domain"
	"github.com/shopspring/decimal"
)

const (
	xmlDateLayout = time.DateOnly
	csvDateLayout = "02 January 2006"
)

// rawFeed is the untyped content of a feed document.
type rawFeed struct {
	date       string
	dateLayout string
	entries    []rawRate
}

type rawRate struct {
	currency string
	rate     string
}

// envelope mirrors eurofxref-daily.xml:
//
//	<gesmes:Envelope>
//	  <Cube>
//	    <Cube time="2024-05-10">
//	      <Cube currency="USD" rate="1.0783"/>
type envelope struct {
	XMLName xml.Name `xml:"Envelope"`
	Cube    struct {
		Days []struct {
			Time  string `xml:"time,attr"`
			Rates []struct {
				Currency string `xml:"currency,attr"`
				Rate     string `xml:"rate,attr"`
			} `xml:"Cube"`
		} `xml:"Cube"`
	} `xml:"Cube"`
}

func decodeXML(body []byte) (*rawFeed, error) {
	var env envelope
	if err := xml.Unmarshal(body, &env); err != nil {
		return nil, apperrors.NewParseError("decode xml", err)
	}
	if len(env.Cube.Days) == 0 {
		return nil, apperrors.NewParseError("no dated cube in feed", nil)
	}

	// Documents with history list the most recent day first.
	day := env.Cube.Days[0]
	feed := &rawFeed{date: day.Time, dateLayout: xmlDateLayout}
	for _, r := range day.Rates {
		feed.entries = append(feed.entries, rawRate{currency: r.Currency, rate: r.Rate})
	}
	return feed, nil
}

// decodeZippedCSV reads eurofxref.zip: a single CSV with a "Date, USD, JPY, ..."
// header and one data row.
func decodeZippedCSV(body []byte) (*rawFeed, error) {
	zr, err := zip.NewReader(bytes.NewReader(body), int64(len(body)))
	if err != nil {
		return nil, apperrors.NewParseError("open zip archive", err)
	}

	var csvFile *zip.File
	for _, file := range zr.File {
		if strings.EqualFold(path.Ext(file.Name), ".csv") {
			csvFile = file
			break
		}
	}
	if csvFile == nil {
		return nil, apperrors.NewParseError("zip archive contains no csv file", nil)
	}

	rc, err := csvFile.Open()
	if err != nil {
		return nil, apperrors.NewParseError("open "+csvFile.Name, err)
	}
	defer rc.Close()

	return decodeCSV(rc)
}

func decodeCSV(r io.Reader) (*rawFeed, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return nil, apperrors.NewParseError("read csv header", err)
	}
	row, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, apperrors.NewParseError("csv has no data row", nil)
		}
		return nil, apperrors.NewParseError("read csv row", err)
	}
	if len(header) < 2 || !strings.EqualFold(strings.TrimSpace(header[0]), "Date") {
		return nil, apperrors.NewParseError("unexpected csv header", nil)
	}
	if len(row) < len(header) {
		return nil, apperrors.NewParseError(fmt.Sprintf("csv row has %d fields, header has %d", len(row), len(header)), nil)
	}

	feed := &rawFeed{date: strings.TrimSpace(row[0]), dateLayout: csvDateLayout}
	for i := 1; i < len(header); i++ {
		// The published file ends every line with a separator.
		if strings.TrimSpace(header[i]) == "" {
			continue
		}
		feed.entries = append(feed.entries, rawRate{currency: header[i], rate: row[i]})
	}
	return feed, nil
}

// normalize validates raw entries into a RateSet and adds the EUR base rate.
func (f *Fetcher) normalize(raw *rawFeed) (*domain.RateSet, error) {
	refDate, err := time.Parse(raw.dateLayout, raw.date)
	if err != nil {
		return nil, apperrors.NewParseError(fmt.Sprintf("invalid reference date %q", raw.date), err)
	}

	rates := make(map[string]decimal.Decimal, len(raw.entries)+1)
	for _, entry := range raw.entries {
		code := domain.NormalizeCurrencyCode(entry.currency)
		value := strings.TrimSpace(entry.rate)

		if value == "" || strings.EqualFold(value, "N/A") {
			f.logger.Warn("Missing value for currency, skipping", slog.String("currency", code))
			continue
		}
		if err := domain.ValidateCurrencyCode(code); err != nil {
			return nil, apperrors.NewParseError(fmt.Sprintf("invalid currency %q", entry.currency), err)
		}
		rate, err := decimal.NewFromString(value)
		if err != nil {
			return nil, apperrors.NewParseError(fmt.Sprintf("invalid rate %q for %s", value, code), err)
		}
		if !rate.IsPositive() {
			return nil, apperrors.NewParseError(fmt.Sprintf("non-positive rate %s for %s", value, code), nil)
		}
		if _, dup := rates[code]; dup {
			return nil, apperrors.NewParseError("duplicate currency "+code, nil)
		}
		rates[code] = rate
	}

	if len(rates) == 0 {
		return nil, apperrors.NewParseError("no rates in feed", nil)
	}
	rates[domain.BaseCurrency] = decimal.NewFromInt(1)

	return &domain.RateSet{ReferenceDate: refDate, Rates: rates}, nil
}
