package soap

import (
	"fmt"

	"github.com/beevik/etree"
)

// Fault is the soapenv:Fault element of an error response.
type Fault struct {
	Code   string
	String string
}

func (f *Fault) Error() string {
	return fmt.Sprintf("soap fault %s: %s", f.Code, f.String)
}

// parseFault extracts the SOAP fault from body. It returns nil when body is
// not XML or carries no fault.
func parseFault(body []byte) *Fault {
	doc := etree.NewDocument()
	if err := doc.ReadFromBytes(body); err != nil {
		return nil
	}

	el := doc.FindElement("//Fault")
	if el == nil {
		return nil
	}

	f := &Fault{}
	if code := el.FindElement("faultcode"); code != nil {
		f.Code = code.Text()
	}
	if str := el.FindElement("faultstring"); str != nil {
		f.String = str.Text()
	}
	return f
}
