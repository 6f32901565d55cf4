package cmdutil

import (
	"fmt"
	"io"

	"onmodulus/xervo/internal/domain"
)

// ServoTable writes one row per servo.
func ServoTable(w io.Writer, servos []domain.Servo) error {
	rows := make([][]string, 0, len(servos))
	for _, s := range servos {
		size := "-"
		if s.Size > 0 {
			size = fmt.Sprintf("%d MB", s.Size)
		}
		rows = append(rows, []string{
			s.ID,
			OrDash(s.Status),
			OrDash(s.Host),
			OrDash(s.IaaS),
			OrDash(s.Region),
			size,
		})
	}
	return Table(w, []string{"SERVO", "STATUS", "HOST", "IAAS", "REGION", "SIZE"}, rows)
}
