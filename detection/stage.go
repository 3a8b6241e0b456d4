package detection

import (
	"context"

	"github.com/RyanBlaney/sonido-tuner/algorithms/tonal"
	"github.com/RyanBlaney/sonido-tuner/capture"
)

// stage pulls one block from capture and turns it into a pitch estimate
type stage interface {
	estimate(ctx context.Context) (tonal.PitchEstimate, error)
	method() tonal.PitchDetectionMethod
}

type timeDomainStage struct {
	source   capture.Source
	detector *tonal.AutocorrelationDetector
}

func (s *timeDomainStage) estimate(ctx context.Context) (tonal.PitchEstimate, error) {
	block, err := s.source.ReadBlock(ctx)
	if err != nil {
		return tonal.NoPitch, err
	}
	return s.detector.Estimate(block), nil
}

func (s *timeDomainStage) method() tonal.PitchDetectionMethod {
	return tonal.TimeDomainAutocorrelation
}

type frequencyDomainStage struct {
	source   *capture.SpectrumSource
	detector *tonal.SpectralPeakDetector
}

func (s *frequencyDomainStage) estimate(ctx context.Context) (tonal.PitchEstimate, error) {
	spectrum, err := s.source.ReadSpectrum(ctx)
	if err != nil {
		return tonal.NoPitch, err
	}
	return s.detector.Estimate(spectrum), nil
}

func (s *frequencyDomainStage) method() tonal.PitchDetectionMethod {
	return tonal.FrequencyDomainPeak
}
