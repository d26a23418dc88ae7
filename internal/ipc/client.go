package ipc

import (
	"encoding/json"
	"net"
	"net/rpc"
	"net/rpc/jsonrpc"
	"time"
)

// CommandError is a command failure reported by the daemon.
type CommandError struct {
	Command string
	Status  int
	Message string
}

func (e *CommandError) Error() string { return e.Message }

// Client provides RPC access to the daemon.
type Client struct {
	conn   net.Conn
	client *rpc.Client
}

// Dial connects to the IPC server at the given socket path.
func Dial(path string) (*Client, error) {
	conn, err := net.DialTimeout("unix", path, 2*time.Second)
	if err != nil {
		return nil, err
	}
	rpcClient := rpc.NewClientWithCodec(jsonrpc.NewClientCodec(conn))
	return &Client{conn: conn, client: rpcClient}, nil
}

// Close closes the underlying connection.
func (c *Client) Close() error {
	if c.client != nil {
		_ = c.client.Close()
	}
	if c.conn != nil {
		return c.conn.Close()
	}
	return nil
}

// Invoke runs a command and returns its JSON result. A failed command yields
// a *CommandError.
func (c *Client) Invoke(command string, args json.RawMessage) (json.RawMessage, error) {
	var resp InvokeResponse
	if err := c.client.Call(ServiceName+".Invoke", InvokeRequest{Command: command, Args: args}, &resp); err != nil {
		return nil, err
	}
	if resp.Error != "" {
		return nil, &CommandError{Command: command, Status: resp.Status, Message: resp.Error}
	}
	if len(resp.Data) == 0 {
		return json.RawMessage("null"), nil
	}
	return resp.Data, nil
}

// Status retrieves the daemon status.
func (c *Client) Status() (*StatusResponse, error) {
	var resp StatusResponse
	if err := c.client.Call(ServiceName+".Status", StatusRequest{}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Commands lists the daemon's command names.
func (c *Client) Commands() (*CommandsResponse, error) {
	var resp CommandsResponse
	if err := c.client.Call(ServiceName+".Commands", CommandsRequest{}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Events fetches buffered events.
func (c *Client) Events(req EventsRequest) (*EventsResponse, error) {
	var resp EventsResponse
	if err := c.client.Call(ServiceName+".Events", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Shutdown asks the daemon process to exit.
func (c *Client) Shutdown() (*ShutdownResponse, error) {
	var resp ShutdownResponse
	if err := c.client.Call(ServiceName+".Shutdown", ShutdownRequest{}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}
