// Package tcp implements the line-based text protocol of the controller's
// host control server.
//
// The text protocol is older and much slower than the datagram protocol in
// the udp package, but it is available on controllers where the high-speed
// server option is not installed. A session starts with a CONNECT request
// and then exchanges one HOSTCTRL_REQUEST command at a time; the protocol
// has no request ids, so the client serializes commands on the connection.
package tcp
