//go:build windows

package endpoint

import (
	"fmt"
	"sync"
	"syscall"
	"unsafe"

	"github.com/go-ole/go-ole"
	"github.com/moutend/go-wca/pkg/wca"

	"alwaysmute/mute"
)

// BackendName identifies the platform backend in diagnostics.
const BackendName = "wasapi"

// The notification objects registered with Core Audio are hand-built COM
// objects whose IUnknown methods delegate straight to mute.Callback, so the
// platform's retain/release calls drive the exact lifetime the core
// specifies. go-wca covers the enumerator/device/volume calls; the two
// registration methods it does not surface are called through the raw
// vtables.

const (
	hrOK          = uintptr(0)
	hrNoInterface = uintptr(0x80004002)
	hrPointer     = uintptr(0x80004003)
	hrFail        = uintptr(0x80004005)
	hrNotFound    = 0x80070490
)

var (
	iidAudioEndpointVolumeCallback = ole.NewGUID("{657804FA-D6AD-4496-8A60-352752AF4F89}")
	iidMMNotificationClient        = ole.NewGUID("{7991EEC9-7E89-4D85-8390-6C703CEC60C0}")
)

type wcaEnumerator struct {
	mmde   *wca.IMMDeviceEnumerator
	client *comShim
}

// New creates the Core Audio enumerator. It initializes COM for the calling
// thread; that thread must stay locked and own all later enumerator, device
// and volume calls.
func New() (mute.Enumerator, error) {
	if err := ole.CoInitializeEx(0, ole.COINIT_APARTMENTTHREADED); err != nil {
		return nil, fmt.Errorf("initialize com: %w", err)
	}
	var mmde *wca.IMMDeviceEnumerator
	if err := wca.CoCreateInstance(wca.CLSID_MMDeviceEnumerator, 0, wca.CLSCTX_ALL, wca.IID_IMMDeviceEnumerator, &mmde); err != nil {
		ole.CoUninitialize()
		return nil, fmt.Errorf("create device enumerator: %w", err)
	}
	return &wcaEnumerator{mmde: mmde}, nil
}

func (e *wcaEnumerator) DefaultRenderEndpoint() (mute.Device, error) {
	var mmd *wca.IMMDevice
	if err := e.mmde.GetDefaultAudioEndpoint(wca.ERender, wca.EConsole, &mmd); err != nil {
		if oleErr, ok := err.(*ole.OleError); ok && uint32(oleErr.Code()) == hrNotFound {
			return nil, mute.ErrNoDevice
		}
		return nil, fmt.Errorf("default audio endpoint: %w", err)
	}
	return &wcaDevice{mmd: mmd}, nil
}

// enumeratorVtbl mirrors the head of IMMDeviceEnumerator's vtable up to the
// notification registration entries.
type enumeratorVtbl struct {
	queryInterface                         uintptr
	addRef                                 uintptr
	release                                uintptr
	enumAudioEndpoints                     uintptr
	getDefaultAudioEndpoint                uintptr
	getDevice                              uintptr
	registerEndpointNotificationCallback   uintptr
	unregisterEndpointNotificationCallback uintptr
}

func (e *wcaEnumerator) vtbl() *enumeratorVtbl {
	return *(**enumeratorVtbl)(unsafe.Pointer(e.mmde))
}

func (e *wcaEnumerator) SubscribeDefaultChanged(cb *mute.Callback) error {
	shim := pinShim(cb, iidMMNotificationClient, notificationClientVtbl())
	hr, _, _ := syscall.SyscallN(
		e.vtbl().registerEndpointNotificationCallback,
		uintptr(unsafe.Pointer(e.mmde)),
		uintptr(unsafe.Pointer(shim)),
	)
	if hr != hrOK {
		unpinShim(shim)
		return fmt.Errorf("register endpoint notifications: %w", ole.NewError(hr))
	}
	e.client = shim
	return nil
}

func (e *wcaEnumerator) Close() error {
	if e.client != nil {
		syscall.SyscallN(
			e.vtbl().unregisterEndpointNotificationCallback,
			uintptr(unsafe.Pointer(e.mmde)),
			uintptr(unsafe.Pointer(e.client)),
		)
		e.client.cb.Release()
		unpinShim(e.client)
		e.client = nil
	}
	e.mmde.Release()
	ole.CoUninitialize()
	return nil
}

type wcaDevice struct {
	mmd *wca.IMMDevice
}

func (d *wcaDevice) ActivateVolumeControl() (mute.VolumeControl, error) {
	var aev *wca.IAudioEndpointVolume
	if err := d.mmd.Activate(wca.IID_IAudioEndpointVolume, wca.CLSCTX_ALL, nil, &aev); err != nil {
		return nil, fmt.Errorf("activate endpoint volume: %w", err)
	}
	return &wcaVolume{aev: aev}, nil
}

func (d *wcaDevice) Close() error {
	d.mmd.Release()
	return nil
}

// endpointVolumeVtbl mirrors the head of IAudioEndpointVolume's vtable up to
// the control-change registration entries.
type endpointVolumeVtbl struct {
	queryInterface                uintptr
	addRef                        uintptr
	release                       uintptr
	registerControlChangeNotify   uintptr
	unregisterControlChangeNotify uintptr
}

type wcaVolume struct {
	aev  *wca.IAudioEndpointVolume
	shim *comShim
}

func (v *wcaVolume) vtbl() *endpointVolumeVtbl {
	return *(**endpointVolumeVtbl)(unsafe.Pointer(v.aev))
}

func (v *wcaVolume) SetMuteLevel(level float32, tag mute.Token) error {
	guid := (*ole.GUID)(unsafe.Pointer(&tag))
	if err := v.aev.SetMasterVolumeLevelScalar(level, guid); err != nil {
		return fmt.Errorf("set master volume: %w", err)
	}
	return nil
}

func (v *wcaVolume) SubscribeVolumeChanged(cb *mute.Callback) error {
	shim := pinShim(cb, iidAudioEndpointVolumeCallback, volumeCallbackVtbl())
	hr, _, _ := syscall.SyscallN(
		v.vtbl().registerControlChangeNotify,
		uintptr(unsafe.Pointer(v.aev)),
		uintptr(unsafe.Pointer(shim)),
	)
	if hr != hrOK {
		unpinShim(shim)
		return fmt.Errorf("register control change notify: %w", ole.NewError(hr))
	}
	v.shim = shim
	return nil
}

func (v *wcaVolume) Close() error {
	if v.shim != nil {
		// Unregister drops the platform's own reference; the implicit
		// creation reference goes with the control.
		syscall.SyscallN(
			v.vtbl().unregisterControlChangeNotify,
			uintptr(unsafe.Pointer(v.aev)),
			uintptr(unsafe.Pointer(v.shim)),
		)
		v.shim.cb.Release()
		unpinShim(v.shim)
		v.shim = nil
	}
	v.aev.Release()
	return nil
}

// comShim is the COM-facing face of a mute.Callback. Its first word is the
// vtable pointer, as COM requires.
type comShim struct {
	vtbl unsafe.Pointer
	cb   *mute.Callback
	iid  *ole.GUID
}

// pins keeps shims reachable while the platform holds raw pointers to them.
var pins sync.Map

func pinShim(cb *mute.Callback, iid *ole.GUID, vtbl unsafe.Pointer) *comShim {
	shim := &comShim{vtbl: vtbl, cb: cb, iid: iid}
	pins.Store(shim, struct{}{})
	return shim
}

func unpinShim(s *comShim) {
	pins.Delete(s)
}

// volumeNotification mirrors the head of AUDIO_VOLUME_NOTIFICATION_DATA; the
// event context GUID is the originator tag.
type volumeNotification struct {
	EventContext ole.GUID
	Muted        int32
	MasterVolume float32
	Channels     uint32
}

var (
	vtblOnce   sync.Once
	volumeVtbl [4]uintptr
	notifyVtbl [8]uintptr
)

func initVtbls() {
	queryInterface := syscall.NewCallback(func(this, riid, ppv uintptr) uintptr {
		shim := (*comShim)(unsafe.Pointer(this))
		if ppv == 0 {
			return hrPointer
		}
		out := (*uintptr)(unsafe.Pointer(ppv))
		guid := (*ole.GUID)(unsafe.Pointer(riid))

		capability := mute.CapBase
		switch {
		case ole.IsEqualGUID(guid, ole.IID_IUnknown):
		case ole.IsEqualGUID(guid, shim.iid):
			capability = shim.cb.Capability()
		default:
			*out = 0
			return hrNoInterface
		}
		if _, err := shim.cb.Query(capability); err != nil {
			*out = 0
			return hrNoInterface
		}
		*out = this
		return hrOK
	})
	addRef := syscall.NewCallback(func(this uintptr) uintptr {
		shim := (*comShim)(unsafe.Pointer(this))
		return uintptr(shim.cb.Retain())
	})
	release := syscall.NewCallback(func(this uintptr) uintptr {
		shim := (*comShim)(unsafe.Pointer(this))
		return uintptr(shim.cb.Release())
	})
	returnOK := syscall.NewCallback(func(this, a, b uintptr) uintptr {
		return hrOK
	})

	// IAudioEndpointVolumeCallback: IUnknown + OnNotify.
	volumeVtbl[0] = queryInterface
	volumeVtbl[1] = addRef
	volumeVtbl[2] = release
	volumeVtbl[3] = syscall.NewCallback(func(this, data uintptr) uintptr {
		shim := (*comShim)(unsafe.Pointer(this))
		if data == 0 {
			return hrPointer
		}
		notification := (*volumeNotification)(unsafe.Pointer(data))
		tag := *(*mute.Token)(unsafe.Pointer(&notification.EventContext))
		if err := shim.cb.OnVolumeChanged(tag); err != nil {
			return hrFail
		}
		return hrOK
	})

	// IMMNotificationClient: IUnknown + the five device notifications; only
	// OnDefaultDeviceChanged carries information we use.
	notifyVtbl[0] = queryInterface
	notifyVtbl[1] = addRef
	notifyVtbl[2] = release
	notifyVtbl[3] = returnOK // OnDeviceStateChanged
	notifyVtbl[4] = syscall.NewCallback(func(this, deviceID uintptr) uintptr {
		return hrOK // OnDeviceAdded
	})
	notifyVtbl[5] = syscall.NewCallback(func(this, deviceID uintptr) uintptr {
		return hrOK // OnDeviceRemoved
	})
	notifyVtbl[6] = syscall.NewCallback(func(this, flow, role, deviceID uintptr) uintptr {
		shim := (*comShim)(unsafe.Pointer(this))
		if err := shim.cb.OnDefaultChanged(mute.Flow(flow), mute.Role(role)); err != nil {
			return hrFail
		}
		return hrOK
	})
	notifyVtbl[7] = returnOK // OnPropertyValueChanged
}

func volumeCallbackVtbl() unsafe.Pointer {
	vtblOnce.Do(initVtbls)
	return unsafe.Pointer(&volumeVtbl)
}

func notificationClientVtbl() unsafe.Pointer {
	vtblOnce.Do(initVtbls)
	return unsafe.Pointer(&notifyVtbl)
}
