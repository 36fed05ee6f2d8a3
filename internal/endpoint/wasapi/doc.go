// Package wasapi implements the endpoint platform on the Windows Core Audio
// API. Device enumeration, properties and master volume go through go-wca;
// the device topology interfaces it does not cover are bound here directly.
package wasapi

// Name is the backend name used in configuration
const Name = "wasapi"
