package form

// DeviceCodeGrantType is the response_type value that selects the device code path.
const DeviceCodeGrantType = "urn:ietf:params:oauth:grant-type:device_code"

// GrantKind is the authorization path a submission takes.
type GrantKind int

const (
	AuthorizationCode GrantKind = iota
	DeviceCode
)

func (k GrantKind) String() string {
	switch k {
	case DeviceCode:
		return "device_code"
	default:
		return "authorization_code"
	}
}

// IsDeviceCode reports whether the body requests the device code grant.
func IsDeviceCode(b Body) bool {
	v, _ := b.Get("response_type")
	return v == DeviceCodeGrantType
}

// Route selects the grant path for a built body. It is recomputed on every
// submission because the same page may be submitted with different models.
func Route(b Body) GrantKind {
	if IsDeviceCode(b) {
		return DeviceCode
	}
	return AuthorizationCode
}
