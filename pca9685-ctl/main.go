package main

import (
	"flag"
	"fmt"
	"sort"
	"strconv"

	"github.com/antongulenko/golib"
	"github.com/antongulenko/pca9685ctl/board"
	"github.com/antongulenko/pca9685ctl/bus"
	"github.com/antongulenko/pca9685ctl/pca9685"
	"github.com/antongulenko/pca9685ctl/sequence"
	log "github.com/sirupsen/logrus"
)

type commandFunc func() error

var (
	b        = board.DefaultBoard
	seq      = sequence.DefaultSequence
	command  = "scan"
	channel  = "0"
	rounds   = 3
	keepOn   bool
	commands = map[string]commandFunc{
		"none":     func() error { return nil },
		"scan":     scan,
		"on":       setOn,
		"off":      setOff,
		"onoff":    setOnOff,
		"full-on":  setFullOn,
		"full-off": setFullOff,
		"all":      setAll,
		"read":     readChannel,
		"duty":     setDuty,
		"sequence": playSequence,
	}
)

func main() {
	b.RegisterFlags()
	flag.StringVar(&command, "c", command, fmt.Sprintf("Command to execute, one of: %v", commandNames()))
	flag.StringVar(&channel, "ch", channel, "Channel for single channel commands: 0..15 or 'all'")
	flag.IntVar(&rounds, "rounds", rounds, "Number of rounds for the sequence command")
	flag.DurationVar(&seq.SleepTime, "sleep", seq.SleepTime, "Time between two steps of the sequence command")
	flag.DurationVar(&seq.PeakTravelTime, "travel", seq.PeakTravelTime, "Time for the sequence peak to travel all outputs")
	flag.BoolVar(&seq.Bounce, "bounce", seq.Bounce, "Let the sequence change direction")
	flag.BoolVar(&keepOn, "keep", keepOn, "Do not switch the outputs off when exiting")
	golib.RegisterLogFlags()
	flag.Parse()
	golib.ConfigureLogging()
	golib.Checkerr(doMain())
}

func commandNames() []string {
	names := make([]string, 0, len(commands))
	for name := range commands {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func doMain() error {
	cmd, ok := commands[command]
	if !ok {
		return fmt.Errorf("Unknown command %v, available commands: %v", command, commandNames())
	}
	if err := b.Setup(); err != nil {
		return err
	}
	defer func() {
		if keepOn {
			b.Device = nil // Skip switching the outputs off
		}
		b.Cleanup()
	}()
	return cmd()
}

func selectedChannel() (pca9685.Channel, error) {
	return pca9685.ParseChannel(channel)
}

// counterArgs parses exactly n positional arguments as 12 bit counter values
func counterArgs(n int) ([]uint16, error) {
	args := flag.Args()
	if len(args) != n {
		return nil, fmt.Errorf("Command %v expects %v value argument(s), got %v", command, n, len(args))
	}
	values := make([]uint16, n)
	for i, arg := range args {
		val, err := strconv.ParseUint(arg, 0, 16)
		if err != nil {
			return nil, fmt.Errorf("Failed to parse argument '%v' as counter value: %v", arg, err)
		}
		values[i] = uint16(val)
	}
	return values, nil
}

func scan() error {
	slaves := bus.Scan(b.Bus())
	log.Printf("Scanned slaves: %#02v", slaves)
	return nil
}

func setOn() error {
	ch, err := selectedChannel()
	if err != nil {
		return err
	}
	values, err := counterArgs(1)
	if err != nil {
		return err
	}
	log.Printf("Setting ON counter of %v to %v", ch, values[0])
	return b.Device.SetChannelOn(ch, values[0])
}

func setOff() error {
	ch, err := selectedChannel()
	if err != nil {
		return err
	}
	values, err := counterArgs(1)
	if err != nil {
		return err
	}
	log.Printf("Setting OFF counter of %v to %v", ch, values[0])
	return b.Device.SetChannelOff(ch, values[0])
}

func setOnOff() error {
	ch, err := selectedChannel()
	if err != nil {
		return err
	}
	values, err := counterArgs(2)
	if err != nil {
		return err
	}
	log.Printf("Setting counters of %v to ON=%v OFF=%v", ch, values[0], values[1])
	return b.Device.SetChannelOnOff(ch, values[0], values[1])
}

func setFullOn() error {
	ch, err := selectedChannel()
	if err != nil {
		return err
	}
	var delay uint16
	if len(flag.Args()) > 0 {
		values, err := counterArgs(1)
		if err != nil {
			return err
		}
		delay = values[0]
	}
	log.Printf("Setting %v full on (delay %v)", ch, delay)
	return b.Device.SetChannelFullOn(ch, delay)
}

func setFullOff() error {
	ch, err := selectedChannel()
	if err != nil {
		return err
	}
	log.Printf("Setting %v full off", ch)
	return b.Device.SetChannelFullOff(ch)
}

// setAll takes 32 values: 16 ON counters followed by 16 OFF counters
func setAll() error {
	values, err := counterArgs(2 * pca9685.NumChannels)
	if err != nil {
		return err
	}
	var on, off [pca9685.NumChannels]uint16
	copy(on[:], values[:pca9685.NumChannels])
	copy(off[:], values[pca9685.NumChannels:])
	log.Printf("Setting all channels: ON=%v OFF=%v", on, off)
	return b.Device.SetAllOnOff(on, off)
}

func readChannel() error {
	ch, err := selectedChannel()
	if err != nil {
		return err
	}
	state, err := b.Device.ReadChannel(ch)
	if err != nil {
		return err
	}
	log.Printf("Channel %v: ON=%v (full on: %v) OFF=%v (full off: %v)", ch, state.On, state.FullOn, state.Off, state.FullOff)
	return nil
}

// setDuty takes one fraction in [0; 1] per output, starting at channel 0
func setDuty() error {
	args := flag.Args()
	if len(args) == 0 || len(args) > pca9685.NumChannels {
		return fmt.Errorf("Command duty expects 1..%v fractions, got %v", pca9685.NumChannels, len(args))
	}
	values := make([]float64, len(args))
	for i, arg := range args {
		value, err := strconv.ParseFloat(arg, 64)
		if err != nil || value < 0 || value > 1 {
			return fmt.Errorf("Invalid duty fraction '%v', expected a number in [0; 1]", arg)
		}
		values[i] = value
	}
	var frame pca9685.Frame
	frame.SetFractions(values)
	log.Printf("Setting %v duty value(s): %v", len(values), values)
	return frame.Apply(b.Device)
}

func playSequence() error {
	log.Printf("Playing %v round(s) of the light sequence", rounds)
	return seq.RunDevice(rounds, b.Device)
}
