package v2

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

// ServiceName полное имя gRPC-сервиса.
const ServiceName = "transfer.v2.TransferService"

// CreateTransferMethod полное имя метода для Invoke и интерсепторов.
const CreateTransferMethod = "/" + ServiceName + "/CreateTransfer"

// MetadataAPIKey ключ метаданных с API-ключом провайдера.
const MetadataAPIKey = "apikey"

// TransferServiceServer серверная часть сервиса.
// Запрос несёт ссылку для трансфера, ответ адрес списка трансферов.
type TransferServiceServer interface {
	CreateTransfer(ctx context.Context, src *wrapperspb.StringValue) (*wrapperspb.StringValue, error)
}

// TransferServiceDesc описание сервиса для grpc.Server.RegisterService.
var TransferServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*TransferServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{
			MethodName: "CreateTransfer",
			Handler:    createTransferHandler,
		},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "transfer/v2/transfer.proto",
}

// RegisterTransferServiceServer регистрирует реализацию на сервере.
func RegisterTransferServiceServer(s grpc.ServiceRegistrar, srv TransferServiceServer) {
	s.RegisterService(&TransferServiceDesc, srv)
}

func createTransferHandler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(wrapperspb.StringValue)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(TransferServiceServer).CreateTransfer(ctx, in)
	}
	info := &grpc.UnaryServerInfo{
		Server:     srv,
		FullMethod: CreateTransferMethod,
	}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(TransferServiceServer).CreateTransfer(ctx, req.(*wrapperspb.StringValue))
	}
	return interceptor(ctx, in, info, handler)
}

// TransferServiceClient клиент сервиса.
type TransferServiceClient struct {
	cc grpc.ClientConnInterface
}

func NewTransferServiceClient(cc grpc.ClientConnInterface) *TransferServiceClient {
	return &TransferServiceClient{cc: cc}
}

// CreateTransfer вызывает одноимённый метод сервера.
func (c *TransferServiceClient) CreateTransfer(ctx context.Context, src string, opts ...grpc.CallOption) (string, error) {
	out := new(wrapperspb.StringValue)
	if err := c.cc.Invoke(ctx, CreateTransferMethod, wrapperspb.String(src), out, opts...); err != nil {
		return "", err
	}
	return out.GetValue(), nil
}
