package export

import (
	"errors"
	"testing"

	"go.uber.org/zap"
)

const networkSample = `Path,Name,Address,Type,Status,Health,Client Conn,Server Conn,Host Model,Version,Fox Port,Platform Port,Credential Store,Platform User,Platform Password,Secure Platform,Use Foxs,Virtuals Enabled,Fault Cause
/Drivers/NiagaraNetwork/JACE_North,JACE_North,ip:192.168.1.141,Niagara Station,{ok},Ok [19-Aug-25 10:11 PM EDT],Connected,Not connected,TITAN,4.12.0.156,1911,3011,store,admin,,true,true,false,
/Drivers/NiagaraNetwork/JACE_South,JACE_South,ip:192.168.1.142,Niagara Station,"{down,fault}",Fail [18-Aug-25 01:02 AM EDT],Not connected,Not connected,TITAN,4.12.0.156,1911,3011,store,admin,,true,true,false,Connection refused
/Drivers/NiagaraNetwork/JACE_North/points,points,,Folder,{ok},,,,,,,,,,,,,,
`

func TestNetworkParse_Basic(t *testing.T) {
	result, err := NewNetworkParser(zap.NewNop()).Parse(networkSample)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(result.Nodes) != 3 {
		t.Fatalf("nodes = %d, want 3", len(result.Nodes))
	}

	north := result.Nodes[0]
	if north.IP != "192.168.1.141" {
		t.Errorf("IP = %q, want 192.168.1.141", north.IP)
	}
	if !north.Connected {
		t.Error("north should be connected (client conn)")
	}
	if north.FoxPort != 1911 || north.PlatformPort != 3011 {
		t.Errorf("ports = %d/%d", north.FoxPort, north.PlatformPort)
	}
	if !north.SecurePlatform || !north.UseFoxs || north.VirtualsEnabled {
		t.Errorf("flags = %+v", north)
	}
	if north.Health != "Ok" || north.HealthTimestamp == nil {
		t.Errorf("health = %q / %v", north.Health, north.HealthTimestamp)
	}

	south := result.Nodes[1]
	if south.Connected {
		t.Error("south should be disconnected")
	}
	if south.FaultCause != "Connection refused" {
		t.Errorf("FaultCause = %q", south.FaultCause)
	}
	if len(south.Status) != 2 || south.Status[0] != "down" {
		t.Errorf("status = %v", south.Status)
	}
}

func TestNetworkParse_NamelessRowDropped(t *testing.T) {
	content := "Path,Name,Address,Type,Status,Health,Client Conn,Server Conn\n/a/b,,ip:10.0.0.1,Niagara Station,{ok},,Connected,\n/a/c,Station2,ip:10.0.0.2,Niagara Station,{ok},,Connected,\n"
	result, err := NewNetworkParser(zap.NewNop()).Parse(content)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(result.Nodes) != 1 {
		t.Errorf("nodes = %d, want 1 (nameless dropped)", len(result.Nodes))
	}
}

func TestNetworkParse_Summary(t *testing.T) {
	result, err := NewNetworkParser(zap.NewNop()).Parse(networkSample)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	s := result.Summary
	if s.TotalNodes != 3 || s.Connected != 1 || s.Disconnected != 2 {
		t.Errorf("summary = %+v", s)
	}
	if s.Stations != 2 {
		t.Errorf("stations = %d, want 2", s.Stations)
	}
	if s.ByType["Niagara Station"] != 2 {
		t.Errorf("ByType = %v", s.ByType)
	}
}

func TestNetworkParse_Analysis(t *testing.T) {
	result, err := NewNetworkParser(zap.NewNop()).Parse(networkSample)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	// 1 of 3 connected: base 33; 67% disconnected is critical.
	a := result.Analysis
	if a.HealthScore >= 33 {
		t.Errorf("health = %d, want penalty applied below base 33", a.HealthScore)
	}
	if a.CriticalCount() == 0 {
		t.Error("expected a critical connectivity alert")
	}
}

func TestNetworkParse_EmptyInput(t *testing.T) {
	_, err := NewNetworkParser(zap.NewNop()).Parse("")
	var perr *ParseError
	if !errors.As(err, &perr) {
		t.Fatalf("err = %v, want *ParseError", err)
	}
}

func TestNetworkParse_MissingAllHeaders(t *testing.T) {
	_, err := NewNetworkParser(zap.NewNop()).Parse("A,B,C\n1,2,3\n")
	if err == nil {
		t.Fatal("expected error for unrelated headers")
	}
}
