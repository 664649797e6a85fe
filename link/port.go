package link

import (
	"fmt"
	"strconv"

	"go.bug.st/serial/enumerator"
)

// ListPorts returns the serial ports present on the system, in index order
func ListPorts() ([]*enumerator.PortDetails, error) {
	ports, err := enumerator.GetDetailedPortsList()
	if err != nil {
		return nil, fmt.Errorf("failed to list serial ports: %w", err)
	}
	return ports, nil
}

// Resolve maps a port identifier to a device name.
// A decimal number selects an entry of ListPorts, anything else is used as is.
func Resolve(identifier string) (string, error) {
	index, err := strconv.Atoi(identifier)
	if err != nil {
		return identifier, nil
	}

	ports, err := ListPorts()
	if err != nil {
		return "", err
	}
	return pick(ports, index)
}

func pick(ports []*enumerator.PortDetails, index int) (string, error) {
	if index < 0 || index >= len(ports) {
		return "", fmt.Errorf("wrong port index %d (%d serial ports found)", index, len(ports))
	}
	return ports[index].Name, nil
}

// Describe formats one port for listing
func Describe(index int, port *enumerator.PortDetails) string {
	if !port.IsUSB {
		return fmt.Sprintf("%d: %s", index, port.Name)
	}
	desc := fmt.Sprintf("%d: %s (USB VID=%s PID=%s", index, port.Name, port.VID, port.PID)
	if port.Product != "" {
		desc += ", " + port.Product
	}
	if port.SerialNumber != "" {
		desc += ", serial " + port.SerialNumber
	}
	return desc + ")"
}
