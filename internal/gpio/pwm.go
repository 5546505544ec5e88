//go:build linux

package gpio

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"
)

// pwmPeriod is the PWM period for the shimmer LED: 1 kHz is far above
// flicker fusion and well within what the Pi's hardware PWM handles.
const pwmPeriod = time.Millisecond

// sysfsPWM drives one channel of a Linux sysfs PWM chip
// (/sys/class/pwm/pwmchipN/pwmM). Used for the shimmer LED: the GPIO
// character device has no PWM support, and hardware PWM avoids burning a
// goroutine on software dimming at LED rates.
type sysfsPWM struct {
	dir      string // channel directory, e.g. /sys/class/pwm/pwmchip0/pwm0
	periodNs int64
}

func openSysfsPWM(chip, channel int) (*sysfsPWM, error) {
	chipDir := fmt.Sprintf("/sys/class/pwm/pwmchip%d", chip)
	dir := filepath.Join(chipDir, fmt.Sprintf("pwm%d", channel))

	// Export the channel if the kernel hasn't already.
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		if err := writeSysfs(filepath.Join(chipDir, "export"), strconv.Itoa(channel)); err != nil {
			return nil, fmt.Errorf("export channel %d: %w", channel, err)
		}
		// The channel directory appears asynchronously after export.
		for i := 0; i < 50; i++ {
			if _, err := os.Stat(dir); err == nil {
				break
			}
			time.Sleep(10 * time.Millisecond)
		}
	}

	p := &sysfsPWM{dir: dir, periodNs: pwmPeriod.Nanoseconds()}

	if err := writeSysfs(filepath.Join(dir, "period"), strconv.FormatInt(p.periodNs, 10)); err != nil {
		return nil, fmt.Errorf("set period: %w", err)
	}
	if err := writeSysfs(filepath.Join(dir, "duty_cycle"), "0"); err != nil {
		return nil, fmt.Errorf("set duty: %w", err)
	}
	if err := writeSysfs(filepath.Join(dir, "enable"), "1"); err != nil {
		return nil, fmt.Errorf("enable: %w", err)
	}

	return p, nil
}

// SetBrightness maps an 8-bit level onto the duty cycle.
func (p *sysfsPWM) SetBrightness(level uint8) error {
	duty := p.periodNs * int64(level) / 255
	if err := writeSysfs(filepath.Join(p.dir, "duty_cycle"), strconv.FormatInt(duty, 10)); err != nil {
		return fmt.Errorf("set duty: %w", err)
	}
	return nil
}

// Close turns the channel off and disables it. The channel stays exported;
// re-exporting on every restart churns the sysfs tree for no benefit.
func (p *sysfsPWM) Close() error {
	var errs []error
	if err := writeSysfs(filepath.Join(p.dir, "duty_cycle"), "0"); err != nil {
		errs = append(errs, err)
	}
	if err := writeSysfs(filepath.Join(p.dir, "enable"), "0"); err != nil {
		errs = append(errs, err)
	}
	if len(errs) > 0 {
		return fmt.Errorf("close pwm: %v", errs)
	}
	return nil
}

func writeSysfs(path, value string) error {
	f, err := os.OpenFile(path, os.O_WRONLY, 0)
	if err != nil {
		return err
	}
	defer f.Close()
	if _, err := f.WriteString(value); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}
