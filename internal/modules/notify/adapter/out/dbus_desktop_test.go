package out_test

import (
	"context"
	"errors"
	"testing"

	"github.com/godbus/dbus/v5"

	notifyout "dsaboost/internal/modules/notify/adapter/out"
)

type fakeBusObject struct {
	dbus.BusObject
	method string
	args   []interface{}
	err    error
}

func (f *fakeBusObject) CallWithContext(_ context.Context, method string, _ dbus.Flags, args ...interface{}) *dbus.Call {
	f.method = method
	f.args = args
	return &dbus.Call{Err: f.err}
}

func TestDBusDesktopNotify(t *testing.T) {
	t.Parallel()
	obj := &fakeBusObject{}
	desktop := notifyout.NewDBusDesktop(obj)
	if err := desktop.Notify(context.Background(), "Done", "25min on Graphs"); err != nil {
		t.Fatalf("notify: %v", err)
	}
	if obj.method != "org.freedesktop.Notifications.Notify" {
		t.Fatalf("method = %q", obj.method)
	}
	if len(obj.args) != 8 || obj.args[3] != "Done" || obj.args[4] != "25min on Graphs" {
		t.Fatalf("args = %#v", obj.args)
	}
}

func TestDBusDesktopNotifyError(t *testing.T) {
	t.Parallel()
	obj := &fakeBusObject{err: errors.New("no server")}
	if err := notifyout.NewDBusDesktop(obj).Notify(context.Background(), "x", "y"); err == nil {
		t.Fatalf("expected error")
	}
}
