package sequence

import (
	"fmt"
	"math"
	"time"

	"github.com/antongulenko/pca9685ctl/pca9685"
)

var DefaultSequence = Sequence{
	Bounce:         false,
	NumOutputs:     pca9685.NumChannels,
	PeakRadius:     4,
	SleepTime:      50 * time.Millisecond,
	PeakTravelTime: 1300 * time.Millisecond,
}

// Sequence moves a brightness peak across the outputs, wrapping around at the end.
type Sequence struct {
	Bounce         bool          // Reverse the direction after traveling a few rounds
	NumOutputs     int           // At most pca9685.NumChannels
	PeakRadius     int           // Number of outputs around the brightness peak, that are not dark
	SleepTime      time.Duration // Time resolution for updates
	PeakTravelTime time.Duration // Time for the brightness peak to travel all outputs
}

func (s *Sequence) Steps(numRounds int) int {
	return int(s.PeakTravelTime/s.SleepTime) * numRounds
}

// Run calls the callback once for every step. The values slice is reused between calls.
func (s *Sequence) Run(numRounds int, callback func(sleepTime time.Duration, values []float64) error) error {
	if s.NumOutputs <= 0 || s.NumOutputs > pca9685.NumChannels {
		return fmt.Errorf("Invalid number of sequence outputs %v (must be 1..%v)", s.NumOutputs, pca9685.NumChannels)
	}
	if s.SleepTime <= 0 || s.PeakTravelTime < s.SleepTime {
		return fmt.Errorf("Invalid sequence timing: sleep %v, peak travel time %v", s.SleepTime, s.PeakTravelTime)
	}
	stepsPerRound := float64(s.PeakTravelTime / s.SleepTime)
	timeStep := float64(s.NumOutputs) / stepsPerRound

	values := make([]float64, s.NumOutputs)
	numSteps := s.Steps(numRounds)
	for i := 0; i < numSteps; i++ {
		s.setValues(timeStep, float64(i), values)
		if err := callback(s.SleepTime, values); err != nil {
			return fmt.Errorf("Error during sequence, step %v of %v: %w", i, numSteps, err)
		}
	}
	return nil
}

// RunDevice plays the sequence on all outputs of the device, one SetAllOnOff call per step.
func (s *Sequence) RunDevice(numRounds int, dev *pca9685.Device) error {
	var frame pca9685.Frame
	return s.Run(numRounds, func(sleepTime time.Duration, values []float64) error {
		frame.SetFractions(values)
		if err := frame.Apply(dev); err != nil {
			return err
		}
		time.Sleep(sleepTime)
		return nil
	})
}

func (s *Sequence) setValues(timeStep float64, x float64, values []float64) {
	if s.Bounce {
		max := 3.2 * float64(len(values))
		x = x - math.Floor(x/max)*max
		if x > max/2 {
			x = max - x
		}
	}

	t := x * timeStep
	max := float64(len(values))
	mid := t - math.Floor(t/max)*max

	for i := range values {
		// Distance to the peak, wrapping around both ends
		dist := math.Abs(float64(i) - mid)
		if wrapped := max - dist; wrapped < dist {
			dist = wrapped
		}
		if dist > float64(s.PeakRadius) {
			values[i] = 0
		} else {
			v := math.Cos(dist / float64(s.PeakRadius) * math.Pi)
			values[i] = (v + 1) / 2 // Map to 0..1
		}
	}
}
