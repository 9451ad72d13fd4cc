package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/cmlabs-hris/trackit-backend-go/internal/domain/attendance"
	"github.com/cmlabs-hris/trackit-backend-go/internal/service/ingest"
	"github.com/cmlabs-hris/trackit-backend-go/internal/service/reconcile"
	"gopkg.in/yaml.v3"
)

// Processing holds the rules that shape a reconciliation run: the holiday
// calendar, input layouts and leave bookkeeping.
type Processing struct {
	Holidays       []attendance.Holiday
	Cosec          ingest.CosecLayout
	BBHR           ingest.BBHRLayout
	Balances       attendance.Balances
	ApprovedStatus string
	MaxRangeDays   int
}

type holidayEntry struct {
	Date        string `yaml:"date"`
	Description string `yaml:"description"`
}

type processingFile struct {
	Holidays       []holidayEntry      `yaml:"holidays"`
	Cosec          ingest.CosecLayout  `yaml:"cosec"`
	BBHR           ingest.BBHRLayout   `yaml:"bbhr"`
	Balances       attendance.Balances `yaml:"balances"`
	ApprovedStatus string              `yaml:"approved_status"`
	MaxRangeDays   int                 `yaml:"max_range_days"`
}

// DefaultProcessing is used when no processing file is configured.
func DefaultProcessing() Processing {
	rc := reconcile.DefaultConfig()
	return Processing{
		Cosec:          ingest.DefaultCosecLayout(),
		BBHR:           ingest.DefaultBBHRLayout(),
		Balances:       rc.Balances,
		ApprovedStatus: rc.ApprovedStatus,
		MaxRangeDays:   rc.MaxRangeDays,
	}
}

// LoadProcessing reads the YAML processing file at path.
func LoadProcessing(path string) (Processing, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Processing{}, fmt.Errorf("read processing config: %w", err)
	}
	p, err := ParseProcessing(data)
	if err != nil {
		return Processing{}, fmt.Errorf("%s: %w", path, err)
	}
	return p, nil
}

// ParseProcessing decodes a processing file. Keys that are left out keep
// their defaults.
func ParseProcessing(data []byte) (Processing, error) {
	p := DefaultProcessing()

	file := processingFile{
		Cosec:          p.Cosec,
		BBHR:           p.BBHR,
		Balances:       p.Balances,
		ApprovedStatus: p.ApprovedStatus,
		MaxRangeDays:   p.MaxRangeDays,
	}
	if err := yaml.Unmarshal(data, &file); err != nil {
		return Processing{}, fmt.Errorf("decode processing config: %w", err)
	}

	seen := make(map[time.Time]bool, len(file.Holidays))
	for i, h := range file.Holidays {
		date, err := time.Parse(time.DateOnly, strings.TrimSpace(h.Date))
		if err != nil {
			return Processing{}, fmt.Errorf("holidays[%d]: date %q must be YYYY-MM-DD", i, h.Date)
		}
		if seen[date] {
			return Processing{}, fmt.Errorf("holidays[%d]: duplicate date %s", i, h.Date)
		}
		seen[date] = true
		p.Holidays = append(p.Holidays, attendance.Holiday{Date: date, Description: h.Description})
	}

	p.Cosec = file.Cosec
	p.BBHR = file.BBHR
	p.Balances = file.Balances
	p.ApprovedStatus = strings.TrimSpace(file.ApprovedStatus)
	p.MaxRangeDays = file.MaxRangeDays

	if err := p.Validate(); err != nil {
		return Processing{}, err
	}
	return p, nil
}

func (p Processing) Validate() error {
	if err := p.Cosec.Validate(); err != nil {
		return fmt.Errorf("cosec layout: %w", err)
	}
	if err := p.BBHR.Validate(); err != nil {
		return fmt.Errorf("bbhr layout: %w", err)
	}
	if p.ApprovedStatus == "" {
		return fmt.Errorf("approved_status is required")
	}
	if p.MaxRangeDays < 0 {
		return fmt.Errorf("max_range_days must not be negative")
	}
	return nil
}

// Reconcile returns the reconciler settings.
func (p Processing) Reconcile() reconcile.Config {
	return reconcile.Config{
		Balances:       p.Balances,
		ApprovedStatus: p.ApprovedStatus,
		MaxRangeDays:   p.MaxRangeDays,
	}
}
