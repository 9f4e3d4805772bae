package ft260

import (
	"fmt"

	log "github.com/sirupsen/logrus"
)

const (
	ReportID_I2CRead      = 0xC2 // Output
	ReportID_I2CInOut     = 0xD0 // 0xD0 - 0xDE, Input, Output
	ReportID_I2CInOut_Max = 0xDE
	// Max size of I2C write payload: (1 + Report ID - 0xD0) * 4 byte

	I2CMaxPayload = (1 + ReportID_I2CInOut_Max - ReportID_I2CInOut) * 4
	I2CMaxRead    = 0xFFFF

	inputReportLen = 64
)

const (
	I2C_MasterNone         = 0x0
	I2C_MasterStart        = 0x2
	I2C_MasterRepStart     = 0x3
	I2C_MasterStop         = 0x4
	I2C_MasterStartStop    = 0x6
	I2C_MasterRepStartStop = I2C_MasterRepStart | I2C_MasterStop
)

// Report ID for an I2C write report that can hold the given payload length
func writeReportID(payloadLen int) byte {
	return ReportID_I2CInOut + byte((payloadLen-1)/4)
}

// i2cSplitTransaction splits the data into chunks fitting one write report each,
// and computes the bus condition for every chunk.
func i2cSplitTransaction(stop bool, data []byte) (payload [][]byte, conditions []byte) {
	for start := 0; start < len(data); start += I2CMaxPayload {
		end := start + I2CMaxPayload
		if end > len(data) {
			end = len(data)
		}
		first, last := start == 0, end == len(data)
		condition := byte(I2C_MasterNone)
		if first {
			condition |= I2C_MasterStart
		}
		if last && stop {
			condition |= I2C_MasterStop
		}
		payload = append(payload, data[start:end])
		conditions = append(conditions, condition)
	}
	return
}

func (f *Ft260) I2cWrite(addr byte, data ...byte) error {
	return f.i2cWrite(addr, true, data)
}

func (f *Ft260) i2cWrite(addr byte, stop bool, data []byte) error {
	if addr&0x80 != 0 {
		return fmt.Errorf("Invalid I2C slave address: %02x", addr)
	}
	payload, conditions := i2cSplitTransaction(stop, data)
	for i, chunk := range payload {
		id := writeReportID(len(chunk))
		report := make([]byte, 4+4*int(1+id-ReportID_I2CInOut))
		report[0] = id
		report[1] = addr
		report[2] = conditions[i]
		report[3] = byte(len(chunk))
		copy(report[4:], chunk)
		log.Debugf("FT260 I2C write to %#02x, report %#02x, condition %v: %#02v", addr, id, conditions[i], chunk)
		if err := f.writeReport(report); err != nil {
			return err
		}
	}
	return nil
}

func (f *Ft260) I2cRead(addr byte, in []byte) error {
	return f.i2cRead(addr, I2C_MasterStartStop, in)
}

func (f *Ft260) i2cRead(addr byte, condition byte, in []byte) error {
	if len(in) == 0 {
		return nil
	}
	if addr&0x80 != 0 {
		return fmt.Errorf("Invalid I2C slave address: %02x", addr)
	}
	if len(in) > I2CMaxRead {
		return fmt.Errorf("I2C read of %v byte exceeds maximum of %v", len(in), I2CMaxRead)
	}
	request := []byte{ReportID_I2CRead, addr, condition, byte(len(in)), byte(len(in) >> 8)}
	if err := f.writeReport(request); err != nil {
		return err
	}

	buf := make([]byte, inputReportLen)
	for received := 0; received < len(in); {
		n, err := f.dev.Read(buf)
		if err != nil {
			return err
		}
		data, err := parseInputReport(buf[:n])
		if err != nil {
			return err
		}
		if len(data) == 0 {
			return fmt.Errorf("Empty I2C input report after %v of %v byte", received, len(in))
		}
		received += copy(in[received:], data)
	}
	return nil
}

// parseInputReport returns the payload of an I2C input report: report ID, length, data.
func parseInputReport(report []byte) ([]byte, error) {
	if len(report) < 2 {
		return nil, fmt.Errorf("Short I2C input report (%v byte)", len(report))
	}
	if id := report[0]; id < ReportID_I2CInOut || id > ReportID_I2CInOut_Max {
		return nil, fmt.Errorf("Unexpected I2C input report id %#02x", id)
	}
	l := int(report[1])
	if len(report) < l+2 {
		return nil, fmt.Errorf("Short I2C read (%v, needed at least %v)", len(report), l+2)
	}
	return report[2 : 2+l], nil
}

// I2cWriteRead writes without STOP condition and reads after a repeated START.
func (f *Ft260) I2cWriteRead(addr byte, out, in []byte) error {
	if len(out) == 0 {
		return f.I2cRead(addr, in)
	}
	if len(in) == 0 {
		return f.i2cWrite(addr, true, out)
	}
	if err := f.i2cWrite(addr, false, out); err != nil {
		return err
	}
	return f.i2cRead(addr, I2C_MasterRepStartStop, in)
}
