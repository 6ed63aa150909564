// Package model contains the DTE JSON schema blocks and the request and
// response DTOs exchanged with the firmador microservice and the MH
// reception API. Field names reproduce the MH schema verbatim.
package model

// Documento is the canonical DTE payload sent to the firmador.
type Documento struct {
	Identificacion  Identificacion `json:"identificacion"`
	Emisor          Emisor         `json:"emisor"`
	Receptor        Receptor       `json:"receptor"`
	CuerpoDocumento []Item         `json:"cuerpoDocumento"`
	Resumen         Resumen        `json:"resumen"`
	Extension       *Extension     `json:"extension"`
	Apendice        []Apendice     `json:"apendice"`
}

type Identificacion struct {
	Version          int     `json:"version"`
	Ambiente         string  `json:"ambiente"`
	TipoDte          string  `json:"tipoDte"`
	NumeroControl    string  `json:"numeroControl"`
	CodigoGeneracion string  `json:"codigoGeneracion"`
	TipoModelo       int     `json:"tipoModelo"`
	TipoOperacion    int     `json:"tipoOperacion"`
	TipoContingencia *int    `json:"tipoContingencia"`
	MotivoContin     *string `json:"motivoContin"`
	FecEmi           string  `json:"fecEmi"`
	HorEmi           string  `json:"horEmi"`
	TipoMoneda       string  `json:"tipoMoneda"`
}

type Direccion struct {
	Departamento string `json:"departamento"`
	Municipio    string `json:"municipio"`
	Complemento  string `json:"complemento"`
}

type Emisor struct {
	Nit                 string    `json:"nit"`
	Nrc                 string    `json:"nrc"`
	Nombre              string    `json:"nombre"`
	CodActividad        string    `json:"codActividad"`
	DescActividad       string    `json:"descActividad"`
	NombreComercial     string    `json:"nombreComercial"`
	TipoEstablecimiento string    `json:"tipoEstablecimiento"`
	Direccion           Direccion `json:"direccion"`
	Telefono            string    `json:"telefono"`
	Correo              string    `json:"correo"`
}

type Receptor struct {
	TipoDocumento string     `json:"tipoDocumento"`
	NumDocumento  string     `json:"numDocumento"`
	Nrc           string     `json:"nrc,omitempty"`
	Nombre        string     `json:"nombre"`
	CodActividad  string     `json:"codActividad,omitempty"`
	DescActividad string     `json:"descActividad,omitempty"`
	Direccion     *Direccion `json:"direccion"`
	Telefono      string     `json:"telefono,omitempty"`
	Correo        string     `json:"correo"`
}

// Item is a single cuerpoDocumento entry. Monetary amounts are rounded
// to 2 decimals before they land here.
type Item struct {
	NumItem      int     `json:"numItem"`
	TipoItem     int     `json:"tipoItem"`
	Codigo       string  `json:"codigo,omitempty"`
	Descripcion  string  `json:"descripcion"`
	Cantidad     float64 `json:"cantidad"`
	UniMedida    int     `json:"uniMedida"`
	PrecioUni    float64 `json:"precioUni"`
	MontoDescu   float64 `json:"montoDescu"`
	VentaNoSuj   float64 `json:"ventaNoSuj"`
	VentaExenta  float64 `json:"ventaExenta"`
	VentaGravada float64 `json:"ventaGravada"`
	IvaItem      float64 `json:"ivaItem"`
}

type Resumen struct {
	TotalNoSuj          float64 `json:"totalNoSuj"`
	TotalExenta         float64 `json:"totalExenta"`
	TotalGravada        float64 `json:"totalGravada"`
	SubTotalVentas      float64 `json:"subTotalVentas"`
	TotalDescu          float64 `json:"totalDescu"`
	SubTotal            float64 `json:"subTotal"`
	TotalIva            float64 `json:"totalIva"`
	MontoTotalOperacion float64 `json:"montoTotalOperacion"`
	TotalPagar          float64 `json:"totalPagar"`
	TotalLetras         string  `json:"totalLetras"`
	CondicionOperacion  int     `json:"condicionOperacion"`
}

type Extension struct {
	NombEntrega   string `json:"nombEntrega,omitempty"`
	DocuEntrega   string `json:"docuEntrega,omitempty"`
	NombRecibe    string `json:"nombRecibe,omitempty"`
	DocuRecibe    string `json:"docuRecibe,omitempty"`
	Observaciones string `json:"observaciones,omitempty"`
}

type Apendice struct {
	Campo    string `json:"campo"`
	Etiqueta string `json:"etiqueta"`
	Valor    string `json:"valor"`
}
