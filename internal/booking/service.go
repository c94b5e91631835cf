package booking

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"dossierflow/internal/llm"
	"dossierflow/internal/trip"
)

const (
	tripInfoFile     = "booking_trip_info.json"
	bookingCacheFile = "ai_booking_data.json"
	flightOutputFile = "booking_flight.html"
)

func hotelOutputFile(i int) string {
	return fmt.Sprintf("booking_hotel_%d.html", i)
}

// Service orchestrates booking generation: trip-info extraction and
// editing, the model-backed selection with its token-saving cache, and
// the rendered confirmation files.
type Service struct {
	client   llm.Client
	extract  TextExtractor
	gen      *Generator
	cacheDir string
	outDir   string
}

func NewService(client llm.Client, extract TextExtractor, gen *Generator, cacheDir, outputDir string) *Service {
	if gen == nil {
		gen = NewGenerator(0)
	}
	return &Service{client: client, extract: extract, gen: gen, cacheDir: cacheDir, outDir: outputDir}
}

// SaveTripInfo persists an edited trip record and clears the booking
// cache so the next model run starts from the new facts.
func (s *Service) SaveTripInfo(info trip.Info) error {
	if err := os.MkdirAll(s.cacheDir, 0o755); err != nil {
		return fmt.Errorf("create cache dir: %w", err)
	}
	b, err := json.MarshalIndent(info, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal trip info: %w", err)
	}
	if err := os.WriteFile(filepath.Join(s.cacheDir, tripInfoFile), b, 0o644); err != nil {
		return fmt.Errorf("write trip info: %w", err)
	}
	s.clearBookingCache()
	return nil
}

// LatestTripInfo loads the cached trip record, or a zero record when
// none was extracted yet.
func (s *Service) LatestTripInfo() (trip.Info, error) {
	var info trip.Info
	b, err := os.ReadFile(filepath.Join(s.cacheDir, tripInfoFile))
	if os.IsNotExist(err) {
		return info, nil
	}
	if err != nil {
		return info, fmt.Errorf("read trip info: %w", err)
	}
	if err := json.Unmarshal(b, &info); err != nil {
		return trip.Info{}, fmt.Errorf("parse trip info: %w", err)
	}
	return info, nil
}

func (s *Service) clearBookingCache() {
	os.Remove(filepath.Join(s.cacheDir, bookingCacheFile))
}

// ExtractTrip runs trip-info extraction over inputDir and caches the
// result for editing.
func (s *Service) ExtractTrip(ctx context.Context, inputDir string) (trip.Info, error) {
	info, err := ExtractTripInfo(ctx, s.client, s.extract, inputDir)
	if err != nil {
		return info, err
	}
	if err := s.SaveTripInfo(info); err != nil {
		return info, err
	}
	return info, nil
}

// Result is the rendered outcome of one booking generation.
type Result struct {
	UsedCache  bool
	TripInfo   trip.Info
	Data       Data
	HotelHTMLs []string
	HotelPaths []string
	FlightHTML string
	FlightPath string
}

// GenerateAI produces bookings with the model, reusing the cached
// selection unless forceNew is set or the trip record was overridden.
func (s *Service) GenerateAI(ctx context.Context, inputDir string, forceNew bool, override *trip.Info) (Result, error) {
	var res Result

	if override != nil {
		if err := s.SaveTripInfo(*override); err != nil {
			return res, err
		}
		forceNew = true
	}

	cachePath := filepath.Join(s.cacheDir, bookingCacheFile)
	if !forceNew {
		if b, err := os.ReadFile(cachePath); err == nil {
			if err := json.Unmarshal(b, &res.Data); err == nil {
				res.UsedCache = true
			}
		}
	}

	info, err := s.LatestTripInfo()
	if err != nil {
		return res, err
	}

	if !res.UsedCache {
		if isZeroTrip(info) {
			info, err = s.ExtractTrip(ctx, inputDir)
			if err != nil {
				return res, err
			}
		}
		res.Data, err = SelectBookings(ctx, s.client, s.gen, info)
		if err != nil {
			return res, err
		}
		if err := os.MkdirAll(s.cacheDir, 0o755); err != nil {
			return res, fmt.Errorf("create cache dir: %w", err)
		}
		b, err := json.MarshalIndent(res.Data, "", "  ")
		if err != nil {
			return res, fmt.Errorf("marshal booking data: %w", err)
		}
		if err := os.WriteFile(cachePath, b, 0o644); err != nil {
			return res, fmt.Errorf("cache booking data: %w", err)
		}
	}
	res.TripInfo = info

	if err := s.render(&res); err != nil {
		return res, err
	}
	return res, nil
}

// Generate produces bookings from the built-in catalog without a model.
func (s *Service) Generate(destination string, numNights int, guestName, originAirport string, startDate time.Time) (Result, error) {
	var res Result
	res.Data = s.gen.Generate(destination, numNights, guestName, originAirport, startDate)
	if err := s.render(&res); err != nil {
		return res, err
	}
	return res, nil
}

func (s *Service) render(res *Result) error {
	if err := os.MkdirAll(s.outDir, 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}
	for i, hotel := range res.Data.Hotels {
		html, err := RenderHotel(hotel)
		if err != nil {
			return err
		}
		path := filepath.Join(s.outDir, hotelOutputFile(i+1))
		if err := os.WriteFile(path, []byte(html), 0o644); err != nil {
			return fmt.Errorf("write hotel confirmation: %w", err)
		}
		res.HotelHTMLs = append(res.HotelHTMLs, html)
		res.HotelPaths = append(res.HotelPaths, path)
	}
	html, err := RenderFlight(res.Data.Flight)
	if err != nil {
		return err
	}
	res.FlightPath = filepath.Join(s.outDir, flightOutputFile)
	if err := os.WriteFile(res.FlightPath, []byte(html), 0o644); err != nil {
		return fmt.Errorf("write flight confirmation: %w", err)
	}
	res.FlightHTML = html
	return nil
}

// Latest re-reads the confirmation files from the last generation.
func (s *Service) Latest() (hotelHTMLs []string, flightHTML string, err error) {
	for i := 1; ; i++ {
		b, readErr := os.ReadFile(filepath.Join(s.outDir, hotelOutputFile(i)))
		if os.IsNotExist(readErr) {
			break
		}
		if readErr != nil {
			return nil, "", fmt.Errorf("read hotel confirmation: %w", readErr)
		}
		hotelHTMLs = append(hotelHTMLs, string(b))
	}
	b, readErr := os.ReadFile(filepath.Join(s.outDir, flightOutputFile))
	if readErr != nil && !os.IsNotExist(readErr) {
		return nil, "", fmt.Errorf("read flight confirmation: %w", readErr)
	}
	return hotelHTMLs, string(b), nil
}

func isZeroTrip(info trip.Info) bool {
	return len(info.GuestNames) == 0 &&
		info.DestinationCountry == "" &&
		len(info.CitiesToVisit) == 0 &&
		info.TravelStartDate == "" &&
		info.TravelEndDate == ""
}
