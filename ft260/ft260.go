package ft260

import (
	"errors"
	"fmt"
	"io"

	"github.com/karalabe/hid"
	log "github.com/sirupsen/logrus"
)

const (
	FTDIVendorId   = 0x0403
	FT260ProductId = 0x6030

	// Interface 0 carries the I2C reports, interface 1 is the UART
	I2cInterface = 0
)

// Ft260 is a FTDI FT260 USB-HID to I2C bridge. It implements bus.I2cBus.
type Ft260 struct {
	dev io.ReadWriter // Exchanges raw HID reports, usually a *hid.Device
}

func New(dev io.ReadWriter) *Ft260 {
	return &Ft260{dev: dev}
}

func Open() (*Ft260, error) {
	return OpenPath("")
}

// OpenPath opens the FT260 with the given HID path, or the first FT260 if path is empty.
func OpenPath(path string) (*Ft260, error) {
	if !hid.Supported() {
		return nil, errors.New("The library github.com/karalabe/hid is not supported on this platform")
	}
	devices := hid.Enumerate(FTDIVendorId, FT260ProductId)
	if len(devices) == 0 {
		return nil, fmt.Errorf("No USB HID device found with vendorID=%04x productID=%04x", FTDIVendorId, FT260ProductId)
	}
	info, err := selectDevice(devices, path)
	if err != nil {
		return nil, err
	}
	log.Printf("Opening USB HID device %v (interface %v): %v (%04x) from %v (%04x), Release %v",
		info.Path, info.Interface, info.Product, info.ProductID, info.Manufacturer, info.VendorID, info.Release)
	dev, err := info.Open()
	if err != nil {
		return nil, err
	}
	return New(dev), nil
}

func selectDevice(devices []hid.DeviceInfo, path string) (hid.DeviceInfo, error) {
	var candidates []hid.DeviceInfo
	for _, info := range devices {
		if path != "" && info.Path == path {
			return info, nil
		}
		if info.Interface == I2cInterface {
			candidates = append(candidates, info)
		}
	}
	if path != "" {
		return hid.DeviceInfo{}, fmt.Errorf("No FT260 device found at USB path %v", path)
	}
	if len(candidates) == 0 {
		return hid.DeviceInfo{}, fmt.Errorf("No FT260 device exposes the I2C interface %v", I2cInterface)
	}
	if len(candidates) > 1 {
		log.Warnf("Multiple FT260 devices connected, using first (%v)", candidates[0].Path)
	}
	return candidates[0], nil
}

func (f *Ft260) Close() error {
	if closer, ok := f.dev.(io.Closer); ok {
		return closer.Close()
	}
	return nil
}

func (f *Ft260) writeReport(report []byte) error {
	n, err := f.dev.Write(report)
	if err == nil && n != len(report) {
		err = fmt.Errorf("ft260: wrong write len (%v instead of %v)", n, len(report))
	}
	return err
}
