package out

import (
	"context"
	"fmt"

	"github.com/godbus/dbus/v5"

	"dsaboost/internal/modules/notify/domain"
	notifyout "dsaboost/internal/modules/notify/port/out"
)

const (
	notificationsDest   = "org.freedesktop.Notifications"
	notificationsPath   = dbus.ObjectPath("/org/freedesktop/Notifications")
	notificationsMethod = "org.freedesktop.Notifications.Notify"
	expireTimeoutMillis = int32(6000)
)

type DBusDesktop struct {
	obj  dbus.BusObject
	icon string
}

// ConnectDesktop attaches to the session bus. Headless hosts return an error;
// callers run without desktop notices then.
func ConnectDesktop() (notifyout.Desktop, error) {
	conn, err := dbus.SessionBus()
	if err != nil {
		return nil, fmt.Errorf("connect session bus: %w", err)
	}
	return NewDBusDesktop(conn.Object(notificationsDest, notificationsPath)), nil
}

func NewDBusDesktop(obj dbus.BusObject) *DBusDesktop {
	return &DBusDesktop{obj: obj, icon: "appointment-soon"}
}

func (d *DBusDesktop) Notify(ctx context.Context, summary, body string) error {
	call := d.obj.CallWithContext(ctx, notificationsMethod, 0,
		domain.AppName,
		uint32(0),
		d.icon,
		summary,
		body,
		[]string{},
		map[string]dbus.Variant{"urgency": dbus.MakeVariant(byte(1))},
		expireTimeoutMillis,
	)
	if call.Err != nil {
		return fmt.Errorf("dbus notify: %w", call.Err)
	}
	return nil
}
